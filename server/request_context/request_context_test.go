// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package request_context

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/training", nil)
	req.Header.Set("Cache-Control", "No-Cache")

	rc := FromContext(WithRequestContext(req.Context(), req))

	assert.NotEmpty(t, rc.RequestID)
	assert.Equal(t, http.StatusOK, rc.StatusCode)
	assert.True(t, rc.NoCache)
}

func TestFromContextWithoutValue(t *testing.T) {
	t.Parallel()

	rc := FromContext(context.Background())

	assert.NotNil(t, rc)
	assert.Empty(t, rc.Notices())
}

func TestNotifyConcurrent(t *testing.T) {
	t.Parallel()

	rc := &RequestContext{}

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			rc.Notify(NoticeError, "请求失败")
		}()
	}

	wg.Wait()

	notices := rc.Notices()
	assert.Len(t, notices, 10)
	assert.Equal(t, Notice{Level: NoticeError, Message: "请求失败"}, notices[0])
}
