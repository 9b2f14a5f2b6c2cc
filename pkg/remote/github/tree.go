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

package github

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

// DefaultAllowPatterns keeps documents, images, notebooks and common source
// formats out of everything a repository may hold.
var DefaultAllowPatterns = []string{
	"**/*.{md,txt,pdf,ipynb}",
	"**/*.{png,jpg,jpeg,gif,svg,webp}",
	"**/*.{js,jsx,ts,tsx,py,json,css,html}",
}

var commitSHA = regexp.MustCompile(`^[0-9a-f]{40}$`)

// 🌳 FetchTree lists the repository at the configured ref.
//
// Branch names are resolved to a commit first. A missing branch or tree is
// reported as an empty listing so an empty topic renders as "no items".
func (c *Client) FetchTree(ctx context.Context, cfg config.RepositoryConfig) ([]remote.TreeEntry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("repo", cfg.String()).Logger()
	owner, repo, ref := cfg.Owner, cfg.CleanRepo(), cfg.Ref()

	key := cache.TreeKey(owner, repo, ref).String()

	var entries []remote.TreeEntry
	if !c.cache.Get(ctx, key, &entries) {
		fetched, found, err := c.fetchTree(ctx, cfg)
		if err != nil {
			return nil, errors.Errorf("fetching tree for %s: %w", cfg.String(), err)
		}
		if !found {
			logger.Debug().Msg("repository or branch not found, treating as empty")
			return []remote.TreeEntry{}, nil
		}
		c.cache.Set(ctx, key, fetched, c.ttl)
		entries = fetched
	} else {
		logger.Debug().Int("entries", len(entries)).Msg("tree served from cache")
	}

	return scope(entries, cfg.CleanSubPath()), nil
}

func (c *Client) fetchTree(ctx context.Context, cfg config.RepositoryConfig) ([]remote.TreeEntry, bool, error) {
	logger := zerolog.Ctx(ctx)
	gh := c.api(cfg)
	owner, repo, ref := cfg.Owner, cfg.CleanRepo(), cfg.Ref()

	sha := ref
	if !commitSHA.MatchString(ref) {
		branch, resp, err := gh.Repositories.GetBranch(ctx, owner, repo, ref, 1)
		if err != nil {
			cerr := c.classify(resp, err)
			if errors.Is(cerr, remote.ErrNotFound) {
				return nil, false, nil
			}
			return nil, false, errors.Errorf("resolving branch %q: %w", ref, cerr)
		}
		sha = branch.GetCommit().GetSHA()
	}

	tree, resp, err := gh.Git.GetTree(ctx, owner, repo, sha, true)
	if err != nil {
		cerr := c.classify(resp, err)
		if errors.Is(cerr, remote.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Errorf("listing tree %s: %w", sha, cerr)
	}

	if tree.GetTruncated() {
		logger.Warn().Str("sha", sha).Int("entries", len(tree.Entries)).Msg("tree listing was truncated by the API")
	}

	entries := make([]remote.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		switch e.GetType() {
		case "tree":
			entries = append(entries, remote.TreeEntry{Path: e.GetPath(), Kind: remote.KindDirectory})
		case "blob":
			if c.allowed(ctx, e.GetPath()) {
				entries = append(entries, remote.TreeEntry{Path: e.GetPath(), Kind: remote.KindFile})
			}
		}
	}

	logger.Debug().Str("sha", sha).Int("raw", len(tree.Entries)).Int("kept", len(entries)).Msg("fetched tree")

	return entries, true, nil
}

func (c *Client) allowed(ctx context.Context, path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range c.allow {
		ok, err := doublestar.Match(pattern, lower)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("bad allow pattern")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// scope keeps entries below sub and makes their paths relative to it.
func scope(entries []remote.TreeEntry, sub string) []remote.TreeEntry {
	if sub == "" {
		return entries
	}

	prefix := sub + "/"
	out := make([]remote.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Path, prefix) {
			continue
		}
		out = append(out, remote.TreeEntry{Path: strings.TrimPrefix(e.Path, prefix), Kind: e.Kind})
	}
	return out
}

// parseReset reads X-RateLimit-Reset, a unix timestamp in seconds.
func parseReset(h http.Header) time.Time {
	v := h.Get("X-RateLimit-Reset")
	if v == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
