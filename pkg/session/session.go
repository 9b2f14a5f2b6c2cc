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

// Package session holds what a reader is currently browsing: the topic
// matched from their location, the merged repository configuration, the
// built tree and the flat file index used for search.
package session

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/content"
	"github.com/walteh/research/pkg/remote"
	"github.com/walteh/research/pkg/tree"
)

// MaxSearchResults caps Search.
const MaxSearchResults = 10

// 📸 Snapshot is the outcome of one navigation
type Snapshot struct {
	// Topic is nil when no topic matches the location.
	Topic  *config.Topic
	Config config.RepositoryConfig
	Tree   []*tree.Node
	Files  []string
	// File is the location relative to the topic, empty for the topic root.
	File string
	View *content.View
	// FileErr is the failure loading File; the tree is still usable.
	FileErr error
}

// 🧭 Session tracks one reader's navigation
type Session struct {
	fetcher     remote.Fetcher
	invalidator config.Invalidator
	resolver    *content.Resolver
	topics      []config.Topic

	mu     sync.Mutex
	global config.RepositoryConfig
	active *config.Topic
	cfg    config.RepositoryConfig
	loaded bool
	nodes  []*tree.Node
	files  []string
	// gen counts topic changes; a tree fetched under an older gen is dropped.
	gen    uint64
}

type Option func(*Session)

// WithGlobal sets the global settings whose token backs topics without one.
func WithGlobal(global config.RepositoryConfig) Option {
	return func(s *Session) {
		s.global = global.Clone()
	}
}

// WithInvalidator sets where cache entries of a repository being left are dropped.
func WithInvalidator(inv config.Invalidator) Option {
	return func(s *Session) {
		s.invalidator = inv
	}
}

func WithResolver(r *content.Resolver) Option {
	return func(s *Session) {
		s.resolver = r
	}
}

// 🏭 New creates a session over topics
func New(f remote.Fetcher, topics []config.Topic, opts ...Option) *Session {
	s := &Session{
		fetcher: f,
		topics:  append([]config.Topic(nil), topics...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = content.NewResolver(f)
	}
	return s
}

func (s *Session) Topics() []config.Topic {
	return append([]config.Topic(nil), s.topics...)
}

// SetGlobal replaces the global settings. A changed token makes the next
// Navigate refetch.
func (s *Session) SetGlobal(global config.RepositoryConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = global.Clone()
}

// MatchTopic finds the topic whose path is location or a parent of it. The
// longest matching path wins.
func (s *Session) MatchTopic(location string) (config.Topic, bool) {
	location = "/" + strings.Trim(location, "/")

	var (
		best  config.Topic
		found bool
	)
	for _, t := range s.topics {
		p := strings.TrimSuffix(t.Path, "/")
		if location != p && !strings.HasPrefix(location, p+"/") {
			continue
		}
		if !found || len(p) > len(best.Path) {
			best, found = t, true
		}
	}
	return best, found
}

// 🚶 Navigate moves to location.
//
// The tree is refetched when the topic or the effective repository settings
// (including the token) differ from the previous navigation; the cache of the
// repository being left is invalidated first. A location below the topic
// root also loads that file, concurrently with the tree.
func (s *Session) Navigate(ctx context.Context, location string) (*Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	topic, ok := s.MatchTopic(location)
	if !ok {
		s.reset()
		logger.Debug().Str("location", location).Msg("no topic matches location")
		return &Snapshot{}, nil
	}

	file, err := relative(location, topic.Path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cfg := topic.Repo.Merge(s.global)
	s.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("topic %q: %w", topic.ID, err)
	}

	refetch := s.needsRefetch(topic, cfg)
	var gen uint64
	if refetch {
		gen = s.leave(ctx, topic, cfg)
	}

	snap := &Snapshot{Topic: &topic, Config: cfg, File: file}

	g, gctx := errgroup.WithContext(ctx)

	if refetch {
		g.Go(func() error {
			entries, err := s.fetcher.FetchTree(gctx, cfg)
			if err != nil {
				return err
			}
			nodes, files := tree.Build(entries), tree.Files(entries)
			snap.Tree, snap.Files = nodes, files

			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen {
				logger.Debug().Str("topic", topic.ID).Msg("discarding tree of a superseded navigation")
				return nil
			}
			s.nodes, s.files = nodes, files
			s.loaded = true
			return nil
		})
	}

	if file != "" && path.Ext(file) != "" {
		g.Go(func() error {
			snap.View, snap.FileErr = s.resolver.Select(gctx, cfg, file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		if refetch && s.gen == gen {
			s.loaded = false
		}
		s.mu.Unlock()
		snap.View.Release()
		return nil, err
	}

	if !refetch {
		s.mu.Lock()
		snap.Tree, snap.Files = s.nodes, s.files
		s.mu.Unlock()
	}

	if n := tree.Find(snap.Tree, file); n != nil && n.IsDir() {
		snap.View.Release()
		snap.View, snap.FileErr = nil, nil
	}

	return snap, nil
}

func (s *Session) needsRefetch(topic config.Topic, cfg config.RepositoryConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || s.active == nil {
		return true
	}
	return s.active.ID != topic.ID || s.cfg != cfg
}

// leave records topic as active and, when the effective settings changed,
// drops the previous repository's cache. It returns the new generation.
func (s *Session) leave(ctx context.Context, topic config.Topic, cfg config.RepositoryConfig) uint64 {
	s.mu.Lock()
	prev, hadPrev := s.cfg, s.active != nil
	s.active = &topic
	s.cfg = cfg
	s.loaded = false
	s.nodes, s.files = nil, nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if hadPrev && prev != cfg && s.invalidator != nil {
		prefix := cache.RepoPrefix(prev.Owner, prev.CleanRepo())
		zerolog.Ctx(ctx).Debug().Str("prefix", prefix).Msg("invalidating previous repository")
		s.invalidator.InvalidateByPrefix(ctx, prefix)
	}
	return gen
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.loaded = false
	s.nodes, s.files = nil, nil
	s.gen++
	s.resolver.Close()
}

// Files is the flat file index of the active topic.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// Tree is the built tree of the active topic.
func (s *Session) Tree() []*tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes
}

// 🔎 Search matches query against the active topic's files.
func (s *Session) Search(query string) []string {
	return Search(s.Files(), query)
}

// Search returns up to MaxSearchResults files whose path contains query,
// ignoring case, in index order. The name is part of the path.
func Search(files []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []string
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), q) {
			out = append(out, f)
			if len(out) == MaxSearchResults {
				break
			}
		}
	}
	return out
}

// Close releases the current file view.
func (s *Session) Close() {
	s.resolver.Close()
}

func relative(location, topicPath string) (string, error) {
	location = "/" + strings.Trim(location, "/")
	rel := strings.TrimPrefix(strings.TrimPrefix(location, strings.TrimSuffix(topicPath, "/")), "/")
	out, err := url.PathUnescape(rel)
	if err != nil {
		return "", errors.Errorf("decoding location %q: %w", location, err)
	}
	return out, nil
}
