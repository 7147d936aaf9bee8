// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example .env and config.yaml files shipped in deploy/.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/core/audit"
)

const (
	envFileName  = ".env.example"
	yamlFileName = "config.yaml.example"
	filePerm     = 0o644

	envFileHeader = `# DetectFE configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# DetectFE configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	backendYAMLComment = `  # -- Root of the detection backend API. Media under /uploads, /exports,
  # /datasets and /custom_datasets is proxied from the same origin.`
)

// essentialEnv are written uncommented.
var essentialEnv = map[string]bool{
	"DETECTFE_HOST":        true,
	"DETECTFE_PORT":        true,
	"DETECTFE_BACKEND_URL": true,
}

func main() {
	outDir := flag.String("out", "deploy", "directory to write the example files to")
	flag.Parse()

	audit.SetDefaultLogger()

	cfg := defaults()

	yamlContent, err := yamlExample(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("path", *outDir).Msg("Failed to create output directory")
	}

	write(filepath.Join(*outDir, envFileName), envExample(cfg))
	write(filepath.Join(*outDir, yamlFileName), yamlContent)
}

func defaults() *config.ServerConfig {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8282"

	return cfg
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Generated example file")
}

// envExample lists every env-tagged field, grouped by config section.
func envExample(cfg *config.ServerConfig) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	for i := range typ.NumField() {
		section := val.Field(i)
		if section.Kind() != reflect.Struct || typ.Field(i).Tag.Get("yaml") == "-" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", typ.Field(i).Name)

		for j := range section.NumField() {
			tag, ok := section.Type().Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			name, _, _ := strings.Cut(tag, ",")
			value := section.Field(j)

			switch {
			case essentialEnv[name]:
				fmt.Fprintf(&sb, "%s=\"%v\"\n", name, value.Interface())
			case value.Kind() == reflect.Slice:
				items := make([]string, value.Len())
				for k := range items {
					items[k] = fmt.Sprint(value.Index(k).Interface())
				}

				fmt.Fprintf(&sb, "# %s=%s\n", name, strings.Join(items, ","))
			case value.IsZero() && value.Kind() == reflect.String:
				fmt.Fprintf(&sb, "# %s=\n", name)
			default:
				fmt.Fprintf(&sb, "# %s=%v\n", name, value.Interface())
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// yamlExample renders the defaults as a config file with all but the
// listener and backend URL commented out.
func yamlExample(cfg *config.ServerConfig) (string, error) {
	var raw strings.Builder

	opts := []yaml.EncodeOption{config.GetDurationEncoderOption(), yaml.Indent(2)}
	if err := yaml.NewEncoder(&raw, opts...).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(raw.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "baseUrl:"):
			sb.WriteString(backendYAMLComment + "\n")
			sb.WriteString(line + "\n")
		case strings.HasPrefix(trimmed, "host:"), strings.HasPrefix(trimmed, "port:"):
			sb.WriteString(line + "\n")
		default:
			indent := len(line) - len(strings.TrimLeft(line, " "))
			fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indent), trimmed)
		}
	}

	return sb.String(), nil
}
