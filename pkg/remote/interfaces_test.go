// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remote_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
	"github.com/walteh/research/pkg/remote/github"
)

// compile-time check that the GitHub client satisfies Fetcher
var _ remote.Fetcher = (*github.Client)(nil)

func TestRateLimitMinutes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name  string
		reset time.Time
		want  int
	}{
		{name: "two_minutes", reset: now.Add(120 * time.Second), want: 2},
		{name: "rounds_up", reset: now.Add(61 * time.Second), want: 2},
		{name: "under_a_minute", reset: now.Add(5 * time.Second), want: 1},
		{name: "already_passed", reset: now.Add(-time.Minute), want: 0},
		{name: "unknown", reset: time.Time{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := remote.NewRateLimitError(tt.reset, now)
			assert.Equal(t, tt.want, err.Minutes(), "minutes should round up")
			assert.ErrorIs(t, err, remote.ErrRateLimited, "should match the sentinel")
		})
	}
}

func TestUserMessage(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil", err: nil, contains: ""},
		{name: "invalid_config", err: errors.WithDetails(config.ErrInvalid, "field", "owner"), contains: "settings"},
		{name: "rate_limited", err: errors.Errorf("fetching tree: %w", remote.NewRateLimitError(now.Add(3*time.Minute), now)), contains: "3 minutes"},
		{name: "unauthorized", err: errors.WithStack(remote.ErrUnauthorized), contains: "token"},
		{name: "not_found", err: remote.ErrNotFound, contains: "not found"},
		{name: "request_failed", err: &remote.RequestError{Status: http.StatusBadGateway}, contains: "HTTP 502"},
		{name: "other", err: errors.New("boom"), contains: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := remote.UserMessage(tt.err)
			assert.Contains(t, msg, tt.contains, "message should explain the failure")
		})
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "api", remote.TierAPI.String(), "api tier name")
	assert.Equal(t, "raw", remote.TierRaw.String(), "raw tier name")
}
