// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var (
	errExpectedPointerToStruct = errors.New("expected a pointer to a struct")
	errUnsupportedFieldType    = errors.New("unsupported field type")
)

var durationType = reflect.TypeFor[time.Duration]()

// readEnv fills the env-tagged fields of the struct spec points to, recursing
// into config sections.
//
// A field is only replaced when it is still zero, unless its tag carries the
// overwrite option, in which case DETECTFE_* variables beat the YAML file.
func readEnv(spec any) error {
	v := reflect.ValueOf(spec)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", errExpectedPointerToStruct, spec)
	}

	v = v.Elem()

	for i := range v.NumField() {
		field, sf := v.Field(i), v.Type().Field(i)

		tag, tagged := sf.Tag.Lookup("env")
		if !tagged {
			if field.Kind() == reflect.Struct && field.CanAddr() && sf.IsExported() {
				if err := readEnv(field.Addr().Interface()); err != nil {
					return err
				}
			}

			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		overwrite := slices.Contains(strings.Split(opts, ","), "overwrite")

		raw, ok := os.LookupEnv(name)
		if !ok || !field.CanSet() || (!overwrite && !field.IsZero()) {
			continue
		}

		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%s (%s=%q): %w", sf.Name, name, raw, err)
		}
	}

	return nil
}

// setField parses raw into field according to its kind.
func setField(field reflect.Value, raw string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}

		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(raw)
	case field.CanInt():
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}

		field.SetInt(n)
	case field.CanFloat():
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}

		field.SetFloat(f)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		field.SetBool(b)
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		var items []string

		for item := range strings.SplitSeq(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}

		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFieldType, field.Type())
	}

	return nil
}

// useDotEnv loads the first .env found in the working directory or next to
// the binary. Variables already set in the environment are kept.
func useDotEnv() error {
	var dirs []string

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}

	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")

		if _, err := os.Stat(path); err != nil {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("Loaded configuration from .env file")

		return nil
	}

	log.Debug().Msg("No .env file found, skipping")

	return nil
}
