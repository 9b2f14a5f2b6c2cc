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

// Package cache is a read-through, time-bounded key/value store for remote
// responses. Entries carry their own expiry and are evicted lazily on read or
// in bulk by key prefix.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 5 * time.Minute

// ErrNotExist is returned by a Backend for a key it does not hold.
var ErrNotExist = errors.Base("cache entry does not exist")

// 🔌 Backend is the raw byte storage behind a Store
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data. ttl is a hint for backends with native expiry; the
	// Store checks expiry itself either way.
	Write(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// entry is the serialized form of a cached value.
type entry struct {
	Payload   json.RawMessage `json:"data"`
	ExpiresAt int64           `json:"expiry"` // unix milliseconds
}

// 🗄️ Store wraps a Backend with expiry and JSON payloads
type Store struct {
	backend Backend
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// 🏭 New creates a store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get decodes the entry for key into dst and reports whether it was a hit.
// Absent, unparsable and expired entries are misses; expired ones are deleted.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	logger := zerolog.Ctx(ctx)

	raw, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotExist) {
			logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("cache entry unparsable")
		return false
	}

	if s.now().UnixMilli() >= e.ExpiresAt {
		if err := s.backend.Delete(ctx, key); err != nil {
			logger.Debug().Err(err).Str("key", key).Msg("evicting expired cache entry")
		}
		return false
	}

	if err := json.Unmarshal(e.Payload, dst); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("cache payload does not fit destination")
		return false
	}

	return true
}

// Set stores value under key until now+ttl. Failures are logged and dropped;
// the cache is never required for correctness.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	logger := zerolog.Ctx(ctx)

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("encoding cache payload")
		return
	}

	raw, err := json.Marshal(entry{
		Payload:   payload,
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("encoding cache entry")
		return
	}

	if err := s.backend.Write(ctx, key, raw, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to save to cache")
	}
}

// InvalidateByPrefix removes every entry whose key starts with prefix.
func (s *Store) InvalidateByPrefix(ctx context.Context, prefix string) {
	logger := zerolog.Ctx(ctx)

	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		logger.Warn().Err(err).Str("prefix", prefix).Msg("listing cache keys")
		return
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("deleting cache entry")
			continue
		}
		removed++
	}

	logger.Debug().Str("prefix", prefix).Int("removed", removed).Msg("invalidated cache entries")
}
