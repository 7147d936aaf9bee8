// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	_ "codeberg.org/detectfe/detectfe/core/audit" // setup better logging format
	"codeberg.org/detectfe/detectfe/core/idgen"
)

// Global exposes the server configuration.
var Global ServerConfig

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"DETECTFE_HOST,overwrite" yaml:"host"`
		Port                     string      `env:"DETECTFE_PORT,overwrite" yaml:"port"`
		UnixSocket               string      `env:"DETECTFE_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"DETECTFE_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
	} `yaml:"basic"`

	Backend struct {
		// BaseURL is the backend API root; media is served from its origin.
		BaseURL string        `env:"DETECTFE_BACKEND_URL,overwrite" yaml:"baseUrl"`
		Timeout time.Duration `env:"DETECTFE_BACKEND_TIMEOUT,overwrite" yaml:"timeout"`

		// RateLimit is in requests per second. Zero disables pacing.
		RateLimit float64 `env:"DETECTFE_BACKEND_RATE_LIMIT,overwrite" yaml:"rateLimit"`
		RateBurst int     `env:"DETECTFE_BACKEND_RATE_BURST,overwrite" yaml:"rateBurst"`
	} `yaml:"backend"`

	Cache struct {
		Enabled  bool          `env:"DETECTFE_CACHE,overwrite" yaml:"enabled"`
		Size     int           `env:"DETECTFE_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL      time.Duration `env:"DETECTFE_CACHE_TTL,overwrite" yaml:"cacheTTL"`
		Compress bool          `env:"DETECTFE_CACHE_COMPRESS,overwrite" yaml:"compress"`
	} `yaml:"cache"`

	Instance struct {
		StartingTime      string `yaml:"-"`
		FileServerCacheID string `yaml:"-"`
	} `yaml:"-"`

	Development struct {
		InDevelopment        bool   `env:"DETECTFE_DEV" yaml:"inDevelopment"`
		SaveResponses        bool   `env:"DETECTFE_SAVE_RESPONSES,overwrite" yaml:"saveResponses"`
		ResponseSaveLocation string `env:"DETECTFE_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"DETECTFE_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"DETECTFE_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"DETECTFE_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Internationalization struct {
		// When enabled, missing translations are logged once per locale and key
		// and visibly wrapped using markers.
		StrictMissingKeys bool `env:"DETECTFE_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`
}

// LoadConfig loads the configuration from the command line, the environment and files.
func (cfg *ServerConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	// Precedence: -config flag, then DETECTFE_CONFIGFILE, then ./config.yaml or ./config.yml.
	if configFlagUserSet {
		configFilePath = parsedConfigFlagValue
	} else if envVar := os.Getenv("DETECTFE_CONFIGFILE"); envVar != "" {
		configFilePath = envVar
	} else {
		configFilePath = defaultConfigFile

		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			ymlPath := "./config.yml"
			if _, statErr := os.Stat(ymlPath); statErr == nil {
				configFilePath = ymlPath
			}
		}
	}

	if err := cfg.Load(configFilePath); err != nil {
		return err
	}

	cfg.setupAudit()
	cfg.print()

	if isContainerized() && cfg.Basic.UnixSocket == "" && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

// Load applies defaults, the YAML file at configFilePath (if any), a .env file
// and DETECTFE_* environment variables, then validates the result.
func (cfg *ServerConfig) Load(configFilePath string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.FileServerCacheID = idgen.Make()
	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

var staticSkippedPathPrefixes = []string{"/img/", "/css/", "/js/"}

// ShouldSkipServerLogging reports whether a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	for _, prefix := range staticSkippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	for _, marker := range []string{"/.dockerenv", "/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	// #nosec G304 -- well-known system file, read for heuristics only.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}

	content := string(cgroup)

	for _, keyword := range []string{"docker", "kubepods", "containerd", "lxc", "crio", ".machine"} {
		if strings.Contains(content, keyword) {
			return true
		}
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
