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

package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// StoreFileName is the name of the saved settings record inside the state directory.
const StoreFileName = "gh_config_v1.json"

// Invalidator drops cached entries under a key prefix.
type Invalidator interface {
	InvalidateByPrefix(ctx context.Context, prefix string)
}

// 💾 Store persists the global repository settings as a single JSON record
type Store struct {
	path        string
	invalidator Invalidator
	prefix      string
	mu          sync.Mutex
}

// 🏭 NewStore creates a store rooted at dir. On every Save, all cache keys
// under prefix are invalidated through inv (which may be nil).
func NewStore(dir string, inv Invalidator, prefix string) *Store {
	return &Store{
		path:        filepath.Join(dir, StoreFileName),
		invalidator: inv,
		prefix:      prefix,
	}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// 📖 Load returns the saved settings, or DefaultRepoConfig when nothing usable is on disk
func (s *Store) Load(ctx context.Context) RepositoryConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", s.path).Msg("reading saved settings, using defaults")
		}
		return DefaultRepoConfig.Clone()
	}

	var cfg RepositoryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warn().Err(err).Str("path", s.path).Msg("saved settings are corrupt, using defaults")
		return DefaultRepoConfig.Clone()
	}

	return cfg
}

// 💾 Save writes cfg and sweeps the cache so nothing from a previous repository is served
func (s *Store) Save(ctx context.Context, cfg RepositoryConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".gh_config_*.tmp")
	if err != nil {
		return errors.Errorf("creating temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Errorf("replacing settings: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("saved repository settings")

	if s.invalidator != nil {
		s.invalidator.InvalidateByPrefix(ctx, s.prefix)
	}

	return nil
}
