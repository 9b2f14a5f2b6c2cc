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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

// 📄 FetchFileContent returns a file's text, from cache when fresh
func (c *Client) FetchFileContent(ctx context.Context, cfg config.RepositoryConfig, file string) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	full := repoPath(cfg, file)
	key := cache.ContentKey(cfg.Owner, cfg.CleanRepo(), cfg.Ref(), full).String()

	var text string
	if c.cache.Get(ctx, key, &text) {
		return text, nil
	}

	data, _, err := c.fetchTiered(ctx, cfg, file)
	if err != nil {
		return "", errors.Errorf("fetching %s: %w", full, err)
	}

	text = string(data)
	c.cache.Set(ctx, key, text, c.ttl)
	return text, nil
}

// 🖼️ FetchFileBlob returns a file's bytes. Blobs are never cached.
func (c *Client) FetchFileBlob(ctx context.Context, cfg config.RepositoryConfig, file string) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, _, err := c.fetchTiered(ctx, cfg, file)
	if err != nil {
		return nil, errors.Errorf("fetching %s: %w", repoPath(cfg, file), err)
	}
	return data, nil
}

// fetchTiered tries the API and falls back to the raw host. The fallback is
// skipped when the caller's context is done.
func (c *Client) fetchTiered(ctx context.Context, cfg config.RepositoryConfig, file string) ([]byte, remote.Tier, error) {
	logger := zerolog.Ctx(ctx).With().Str("repo", cfg.String()).Str("path", file).Logger()

	data, apiErr := c.FetchAPI(ctx, cfg, file)
	if apiErr == nil {
		logger.Debug().Stringer("tier", remote.TierAPI).Int("bytes", len(data)).Msg("fetched file")
		return data, remote.TierAPI, nil
	}

	if ctx.Err() != nil || errors.Is(apiErr, context.Canceled) || errors.Is(apiErr, context.DeadlineExceeded) {
		return nil, remote.TierAPI, apiErr
	}

	logger.Warn().Err(apiErr).Msg("API fetch failed, trying raw URL fallback")

	data, rawErr := c.FetchRaw(ctx, cfg, file)
	if rawErr == nil {
		logger.Debug().Stringer("tier", remote.TierRaw).Int("bytes", len(data)).Msg("fetched file")
		return data, remote.TierRaw, nil
	}

	// the raw host cannot see private repositories, so its 404 says less
	// than the API's rate limit or auth failure
	if errors.Is(apiErr, remote.ErrRateLimited) || errors.Is(apiErr, remote.ErrUnauthorized) {
		return nil, remote.TierRaw, apiErr
	}
	return nil, remote.TierRaw, rawErr
}

// FetchAPI reads a file through the contents endpoint with the raw media type.
func (c *Client) FetchAPI(ctx context.Context, cfg config.RepositoryConfig, file string) ([]byte, error) {
	gh := c.api(cfg)

	u := fmt.Sprintf("repos/%s/%s/contents/%s?ref=%s",
		url.PathEscape(cfg.Owner),
		url.PathEscape(cfg.CleanRepo()),
		escapePath(repoPath(cfg, file)),
		url.QueryEscape(cfg.Ref()),
	)

	req, err := gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Errorf("building contents request: %w", err)
	}
	req.Header.Set("Accept", rawMediaType)

	var buf bytes.Buffer
	resp, err := gh.Do(ctx, req, &buf)
	if err != nil {
		return nil, c.classify(resp, err)
	}

	return buf.Bytes(), nil
}

// FetchRaw reads a file from the raw content host without credentials.
func (c *Client) FetchRaw(ctx context.Context, cfg config.RepositoryConfig, file string) ([]byte, error) {
	u := strings.Join([]string{
		c.rawBaseURL,
		url.PathEscape(cfg.Owner),
		url.PathEscape(cfg.CleanRepo()),
		escapePath(cfg.Ref()),
		escapePath(repoPath(cfg, file)),
	}, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Errorf("building raw request: %w", err)
	}

	resp, err := c.rawClient.Do(req)
	if err != nil {
		return nil, errors.Errorf("requesting raw file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading raw file: %w", err)
	}
	return data, nil
}

// repoPath joins the configured sub path and a path relative to it.
func repoPath(cfg config.RepositoryConfig, file string) string {
	file = strings.TrimPrefix(file, "/")
	if sub := cfg.CleanSubPath(); sub != "" {
		return path.Join(sub, file)
	}
	return file
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
