// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pages

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedView string

func (namedView) Render(http.ResponseWriter, *http.Request) error { return nil }

// countingLoaders returns loaders for every page and a build counter per page name.
func countingLoaders() (map[string]Loader, map[string]*atomic.Int32) {
	loaders := make(map[string]Loader)
	counts := make(map[string]*atomic.Int32)

	for _, def := range Definitions() {
		counter := new(atomic.Int32)
		counts[def.Name] = counter
		loaders[def.Name] = func() View {
			counter.Add(1)

			return namedView(def.Name)
		}
	}

	return loaders, counts
}

func TestMatch(t *testing.T) {
	t.Parallel()

	loaders, _ := countingLoaders()

	table, err := NewTable(loaders)
	require.NoError(t, err)

	tests := []struct {
		path  string
		name  string
		title string
	}{
		{"/", "Home", "首页"},
		{"/detection", "Detection", "检测与标注"},
		{"/batch", "Batch", "批量处理"},
		{"/training", "Training", "模型训练"},
		{"/dataset", "Dataset", "数据集管理"},
		{"/preprocessing", "Preprocessing", "数据预处理"},
		{"/export", "Export", "导出管理"},
	}

	for _, tt := range tests {
		page, ok := table.Match(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.name, page.Name)
		assert.Equal(t, tt.title, page.Title)
		assert.Equal(t, namedView(tt.name), page.View())
	}

	assert.Len(t, table.Pages(), len(tests))
}

func TestMatchUnregistered(t *testing.T) {
	t.Parallel()

	loaders, counts := countingLoaders()

	table, err := NewTable(loaders)
	require.NoError(t, err)

	for _, path := range []string{"/nonexistent", "/training/", "/Training", "/training/abc", ""} {
		_, ok := table.Match(path)
		assert.False(t, ok, path)
	}

	for name, c := range counts {
		assert.Zero(t, c.Load(), "%s built without a visit", name)
	}
}

func TestViewBuiltOnce(t *testing.T) {
	t.Parallel()

	loaders, counts := countingLoaders()

	table, err := NewTable(loaders)
	require.NoError(t, err)

	page, ok := table.Match("/training")
	require.True(t, ok)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() { _ = page.View() })
	}

	wg.Wait()

	assert.Equal(t, int32(1), counts["Training"].Load())
	assert.Zero(t, counts["Home"].Load())
}

func TestNewTableMissingLoader(t *testing.T) {
	t.Parallel()

	loaders, _ := countingLoaders()
	delete(loaders, "Export")

	_, err := NewTable(loaders)
	require.ErrorIs(t, err, ErrMissingLoader)
	assert.Contains(t, err.Error(), "Export")
}

func TestDefinitionsIsACopy(t *testing.T) {
	t.Parallel()

	defs := Definitions()
	defs[0].Title = "changed"

	assert.Equal(t, "首页", Definitions()[0].Title)
}
