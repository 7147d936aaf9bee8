// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pages holds the route table: the fixed set of top-level pages, their
titles, and the lazily built views that render them.
*/
package pages

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// View renders the content of one page.
type View interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Submitter is implemented by views that accept a form POST to their own path.
type Submitter interface {
	Submit(w http.ResponseWriter, r *http.Request) error
}

// Loader builds a View. It runs at most once per Table.
type Loader func() View

// Page is one entry of the route table.
type Page struct {
	Path  string
	Name  string
	Title string // source text, localized at render time

	view func() View
}

// View returns the page's view, building it on the first call.
// Concurrent first calls share one build.
func (p Page) View() View {
	return p.view()
}

// Definition is the static part of a Page.
type Definition struct {
	Path  string
	Name  string
	Title string
}

// definitions is the route table in navigation order.
var definitions = []Definition{
	{Path: "/", Name: "Home", Title: "首页"},
	{Path: "/detection", Name: "Detection", Title: "检测与标注"},
	{Path: "/batch", Name: "Batch", Title: "批量处理"},
	{Path: "/training", Name: "Training", Title: "模型训练"},
	{Path: "/dataset", Name: "Dataset", Title: "数据集管理"},
	{Path: "/preprocessing", Name: "Preprocessing", Title: "数据预处理"},
	{Path: "/export", Name: "Export", Title: "导出管理"},
}

// Definitions returns a copy of the route table without views, in navigation order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Table maps paths to pages. It is immutable after NewTable.
type Table struct {
	pages  []Page
	byPath map[string]Page
}

// NewTable builds the route table. loaders is keyed by page Name and must
// cover every page.
func NewTable(loaders map[string]Loader) (*Table, error) {
	t := &Table{
		pages:  make([]Page, 0, len(definitions)),
		byPath: make(map[string]Page, len(definitions)),
	}

	for _, def := range definitions {
		load, ok := loaders[def.Name]
		if !ok || load == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLoader, def.Name)
		}

		page := Page{
			Path:  def.Path,
			Name:  def.Name,
			Title: def.Title,
			view:  sync.OnceValue(func() View { return load() }),
		}

		t.pages = append(t.pages, page)
		t.byPath[page.Path] = page
	}

	return t, nil
}

// Match returns the page registered at exactly path.
// There are no dynamic segments, aliases or redirects.
func (t *Table) Match(path string) (Page, bool) {
	page, ok := t.byPath[path]

	return page, ok
}

// Pages returns the pages in navigation order.
func (t *Table) Pages() []Page {
	return append([]Page(nil), t.pages...)
}

type pageKeyType struct{}

var pageKey = pageKeyType{}

// WithPage returns a derived context carrying the page being served.
func WithPage(ctx context.Context, page Page) context.Context {
	return context.WithValue(ctx, pageKey, page)
}

// Current returns the page being served, if any.
func Current(ctx context.Context) (Page, bool) {
	page, ok := ctx.Value(pageKey).(Page)

	return page, ok
}
