// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// BaseLocale is the language the msgids are written in.
const BaseLocale = "zh"

const (
	poDomain = "detectfe"
	poDir    = "po"
)

var (
	// Logger is the logger used by package i18n.
	Logger = log.Logger

	baseTag = language.Make(BaseLocale)

	// guarded by mu; replaced wholesale by Setup
	mu           sync.RWMutex
	localesByTag map[string]*gotext.Locale
	matcher      language.Matcher
	strict       bool

	missingOnce sync.Map
)

// Setup loads every po/<locale>.po catalogue in fsys and builds the language matcher.
//
// Locale file names may use hyphens or underscores ("pt-BR.po", "pt_BR.po").
// The base locale needs no catalogue and is always the fallback.
// Calling Setup again replaces the previously loaded state.
func Setup(fsys fs.FS, strictMissingKeys bool) error {
	Logger = log.With().Str("sys", "i18n").Logger()

	entries, err := fs.ReadDir(fsys, poDir)
	if err != nil {
		return fmt.Errorf("failed to read po directory: %w", err)
	}

	locales := make(map[string]*gotext.Locale)

	var loaded []language.Tag

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".po") {
			continue
		}

		tag, err := language.Parse(strings.ReplaceAll(strings.TrimSuffix(name, ".po"), "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", name).Msg("Skipping invalid locale file")

			continue
		}

		po := gotext.NewPoFS(fsys)
		po.ParseFile(path.Join(poDir, name))

		loc := gotext.NewLocale("", tag.String())
		loc.AddTranslator(poDomain, po)

		locales[tag.String()] = loc
		loaded = append(loaded, tag)

		Logger.Info().Str("locale", tag.String()).Msg("Loaded locale")
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].String() < loaded[j].String() })

	// baseTag goes first so it is the matcher's default.
	all := []language.Tag{baseTag}

	for _, t := range loaded {
		if t != baseTag {
			all = append(all, t)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	localesByTag = locales
	matcher = language.NewMatcher(all)
	strict = strictMissingKeys
	missingOnce = sync.Map{}

	return nil
}

// Languages returns the supported language tags, base locale first.
func Languages() []language.Tag {
	mu.RLock()
	defer mu.RUnlock()

	out := []language.Tag{baseTag}

	for key := range localesByTag {
		if t := language.Make(key); t != baseTag {
			out = append(out, t)
		}
	}

	sort.Slice(out[1:], func(i, j int) bool { return out[i+1].String() < out[j+1].String() })

	return out
}

func logMissingOnce(locale, msgid string) {
	if _, seen := missingOnce.LoadOrStore(locale+"\x00"+msgid, struct{}{}); !seen {
		Logger.Warn().
			Str("locale", locale).
			Str("key", msgid).
			Msg("Missing i18n translation")
	}
}
