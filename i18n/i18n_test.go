// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const testPO = `msgid ""
msgstr ""
"Language: en\n"
"Content-Type: text/plain; charset=UTF-8\n"

msgid "模型训练"
msgstr "Model Training"

msgid "共 {{.Count}} 张图片"
msgstr "{{.Count}} images"
`

func setupTest(t *testing.T, strictMode bool) {
	t.Helper()

	fsys := fstest.MapFS{
		"po/en.po":     {Data: []byte(testPO)},
		"po/README.md": {Data: []byte("ignored")},
	}

	require.NoError(t, Setup(fsys, strictMode))
}

func TestTr(t *testing.T) {
	setupTest(t, false)

	en := WithTag(context.Background(), language.English)
	zh := WithTag(context.Background(), language.Chinese)

	assert.Equal(t, "Model Training", Tr(en, "模型训练"))
	assert.Equal(t, "模型训练", Tr(zh, "模型训练"))
	assert.Equal(t, "模型训练", Tr(context.Background(), "模型训练"))
	assert.Equal(t, "3 images", Tr(en, "共 {{.Count}} 张图片", "Count", 3))
	assert.Equal(t, "共 3 张图片", Tr(zh, "共 {{.Count}} 张图片", "Count", 3))
	assert.Equal(t, "数据集管理", Tr(en, "数据集管理"))
}

func TestTrStrict(t *testing.T) {
	setupTest(t, true)

	en := WithTag(context.Background(), language.English)

	assert.Equal(t, "⟦数据集管理⟧", Tr(en, "数据集管理"))
	assert.Equal(t, "数据集管理", Tr(context.Background(), "数据集管理"))
}

func TestFromRequest(t *testing.T) {
	setupTest(t, false)

	tests := []struct {
		name           string
		target         string
		acceptLanguage string
		want           language.Base
	}{
		{name: "default", target: "/", want: language.MustParseBase("zh")},
		{name: "query", target: "/?lang=en", want: language.MustParseBase("en")},
		{name: "header", target: "/", acceptLanguage: "en-US,en;q=0.9", want: language.MustParseBase("en")},
		{name: "query wins", target: "/?lang=zh", acceptLanguage: "en", want: language.MustParseBase("zh")},
		{name: "auto", target: "/?lang=auto", acceptLanguage: "en", want: language.MustParseBase("en")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.acceptLanguage != "" {
				r.Header.Set("Accept-Language", tt.acceptLanguage)
			}

			base, _ := FromRequest(r).Base()
			assert.Equal(t, tt.want, base)
		})
	}
}

func TestLanguages(t *testing.T) {
	setupTest(t, false)

	langs := Languages()
	require.Len(t, langs, 2)
	assert.Equal(t, language.Chinese, langs[0])
	assert.Equal(t, language.English, langs[1])
}

func TestSetupMissingDir(t *testing.T) {
	assert.Error(t, Setup(fstest.MapFS{}, false))
}
