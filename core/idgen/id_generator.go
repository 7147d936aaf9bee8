// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// timestampHexLen covers the 48-bit millisecond timestamp of a UUIDv7.
	timestampHexLen = 12
	randomHexLen    = 12

	idLength = timestampHexLen + randomHexLen
)

// Make returns a short, time-ordered identifier for correlating log lines.
//
// It keeps the leading timestamp and the random tail of a UUIDv7, so IDs made
// later sort after IDs made earlier.
func Make() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	hex := strings.ReplaceAll(id.String(), "-", "")

	return hex[:timestampHexLen] + hex[len(hex)-randomHexLen:]
}
