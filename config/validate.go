// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errInvalidBackendURL            = errors.New("backend.baseUrl must be an absolute http(s) URL")
	errInvalidBackendTimeout        = errors.New("backend.timeout must be positive")
	errInvalidRateLimit             = errors.New("backend.rateLimit must not be negative")
	errInvalidRateBurst             = errors.New("backend.rateBurst must be at least 1 when rateLimit is set")
	errInvalidCacheSize             = errors.New("cache.cacheSize must be positive when the cache is enabled")
	errInvalidCacheTTL              = errors.New("cache.cacheTTL must be positive when the cache is enabled")
	errInvalidLogLevel              = errors.New("invalid log.logLevel")
	errInvalidLogFormat             = errors.New("log.logFormat must be console or json")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
)

// validateAndSet validates the server configuration and populates derived fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if err := cfg.validateBackend(); err != nil {
		return err
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Size <= 0 {
			return errInvalidCacheSize
		}

		if cfg.Cache.TTL <= 0 {
			return errInvalidCacheTTL
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return errInvalidLogFormat
	}

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8383"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	switch raw := cfg.Basic.RawUnixSocketPermissions; {
	case raw == "":
		cfg.Basic.UnixSocketPermissions = 0o666
	case fileModeOctalRegexp.MatchString(raw):
		mode, _ := strconv.ParseUint(raw, 8, 32)

		cfg.Basic.UnixSocketPermissions = os.FileMode(mode)
	case fileModeStringRegexp.MatchString(raw):
		mode := os.FileMode(0)

		// rwxr-x--- maps left to right onto bits 8 down to 0.
		for i, c := range raw {
			if c != '-' {
				const highestBit = 8

				mode |= 1 << (highestBit - i)
			}
		}

		cfg.Basic.UnixSocketPermissions = mode
	default:
		return errUnixSocketInvalidPermissions
	}

	return nil
}

func (cfg *ServerConfig) validateBackend() error {
	cfg.Backend.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.Backend.BaseURL), "/")

	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBackendURL, cfg.Backend.BaseURL)
	}

	if cfg.Backend.Timeout <= 0 {
		return errInvalidBackendTimeout
	}

	if cfg.Backend.RateLimit < 0 {
		return errInvalidRateLimit
	}

	if cfg.Backend.RateLimit > 0 && cfg.Backend.RateBurst < 1 {
		return errInvalidRateBurst
	}

	return nil
}
