// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// templateCache caches compiled templates per unique template text.
var templateCache sync.Map // key: text, value: *template.Template

// Vars holds named template values for a translation.
type Vars map[string]any

// Tr returns the translation of msgid for the language carried by ctx.
//
// Optional key, value pairs fill text/template placeholders such as {{.Count}}.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	loc, matched, strictMode := resolveLocale(TagFrom(ctx))

	text := msgid
	found := matched == baseTag

	if loc != nil && loc.IsTranslatedD(poDomain, msgid) {
		text = loc.GetD(poDomain, msgid)
		found = true
	}

	if !found && strictMode {
		logMissingOnce(matched.String(), msgid)

		text = "⟦" + msgid + "⟧"
	}

	return render(matched, text, v(kv...))
}

// render formats s as a text/template using data.
func render(locale language.Tag, s string, data Vars) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var tmpl *template.Template

	if t, ok := templateCache.Load(s); ok {
		tmpl = t.(*template.Template)
	} else {
		var err error

		tmpl, err = template.New("msg").Option("missingkey=error").Parse(s)
		if err != nil {
			Logger.Error().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Failed to parse translation")

			return s
		}

		templateCache.Store(s, tmpl)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		Logger.Error().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Failed to render translation")

		return s
	}

	return buf.String()
}

func resolveLocale(t language.Tag) (*gotext.Locale, language.Tag, bool) {
	mu.RLock()
	defer mu.RUnlock()

	if matcher == nil {
		return nil, baseTag, false
	}

	matched, _ := language.MatchStrings(matcher, t.String())
	// Strip the -u-rg extension MatchStrings may attach.
	base, _ := matched.Base()
	region, _ := matched.Region()

	if loc, ok := localesByTag[matched.String()]; ok {
		return loc, matched, strict
	}

	if tag, err := language.Compose(base, region); err == nil {
		if loc, ok := localesByTag[tag.String()]; ok {
			return loc, tag, strict
		}
	}

	if loc, ok := localesByTag[base.String()]; ok {
		return loc, language.Make(base.String()), strict
	}

	return nil, language.Make(base.String()), strict
}

// v builds Vars from alternating key, value pairs.
// Panics on programmer error.
func v(kv ...any) Vars {
	if len(kv)%2 != 0 {
		panic("i18n: odd number of arguments, want key, value pairs")
	}

	m := make(Vars, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("i18n: key must be string")
		}

		m[k] = kv[i+1]
	}

	return m
}
