// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	defaultConfigFile = "./config.yaml"

	defaultBackendURL     = "http://localhost:8000/api"
	defaultBackendTimeout = 60 * time.Second

	// Default cache TTL in minutes.
	defaultCacheTTLMinutes = 5
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	// Host and Port are filled in by validation unless a unix socket is used.
	cfg.Basic.Host = ""
	cfg.Basic.Port = ""

	cfg.Backend.BaseURL = defaultBackendURL
	cfg.Backend.Timeout = defaultBackendTimeout
	cfg.Backend.RateLimit = 0
	cfg.Backend.RateBurst = 10

	cfg.Cache.Enabled = false
	cfg.Cache.Size = 100
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute
	cfg.Cache.Compress = true

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/detectfe/responses"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Internationalization.StrictMissingKeys = false
}
