// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type contextKeyType struct{}

var tagKey = contextKeyType{}

// LangParam is the URL query parameter read for a preferred UI language.
const LangParam = "lang"

// WithTag returns a derived context carrying t.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey, t)
}

// TagFrom returns the language tag stored in ctx, or the tag for [BaseLocale].
// It never returns the zero value of [language.Tag].
func TagFrom(ctx context.Context) language.Tag {
	if ctx != nil {
		if t, _ := ctx.Value(tagKey).(language.Tag); t != (language.Tag{}) {
			return t
		}
	}

	return baseTag
}

// FromRequest returns the best supported language for r.
//
// The [LangParam] query parameter wins over the Accept-Language header.
// A value of "auto" is ignored so the header decides.
func FromRequest(r *http.Request) language.Tag {
	mu.RLock()
	m := matcher
	mu.RUnlock()

	if r == nil || m == nil {
		return baseTag
	}

	preferred := make([]string, 0, 2)

	if q := r.URL.Query().Get(LangParam); q != "" && !strings.EqualFold(q, "auto") {
		preferred = append(preferred, q)
	}

	if al := r.Header.Get("Accept-Language"); al != "" {
		preferred = append(preferred, al)
	}

	tag, _ := language.MatchStrings(m, preferred...)

	return tag
}

// WithRequest is shorthand for WithTag(ctx, FromRequest(r)).
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, FromRequest(r))
}
