// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "flag"

var configFlag string

// parseCommandLineArgs defines and parses flags, returning the value of the "config" flag.
func parseCommandLineArgs() string {
	if flag.Lookup("config") == nil {
		flag.StringVar(&configFlag, "config", defaultConfigFile, "Path to a DetectFE configuration file in YAML format.")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	return configFlag
}
