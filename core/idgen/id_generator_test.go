// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for range 1000 {
		id := Make()

		assert.Len(t, id, idLength)
		assert.NotContains(t, seen, id, "duplicate id")

		seen[id] = struct{}{}
	}
}
