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

	"github.com/google/go-github/v68/github"
	"github.com/rs/zerolog"

	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

// 🕓 FetchFileMetadata returns the latest commit touching file, or nil.
// Nothing here is surfaced to the caller; failures are logged at debug.
func (c *Client) FetchFileMetadata(ctx context.Context, cfg config.RepositoryConfig, file string) *remote.FileMetadata {
	logger := zerolog.Ctx(ctx).With().Str("repo", cfg.String()).Str("path", file).Logger()

	if err := cfg.Validate(); err != nil {
		logger.Debug().Err(err).Msg("skipping metadata for invalid config")
		return nil
	}

	full := repoPath(cfg, file)
	key := cache.MetaKey(cfg.Owner, cfg.CleanRepo(), full).String()

	var meta remote.FileMetadata
	if c.cache.Get(ctx, key, &meta) {
		return &meta
	}

	commits, resp, err := c.api(cfg).Repositories.ListCommits(ctx, cfg.Owner, cfg.CleanRepo(), &github.CommitsListOptions{
		Path:        full,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		logger.Debug().Err(c.classify(resp, err)).Msg("fetching file metadata")
		return nil
	}
	if len(commits) == 0 {
		logger.Debug().Msg("no commits touch this file")
		return nil
	}

	latest := commits[0]
	meta = remote.FileMetadata{
		LastUpdated:      latest.GetCommit().GetCommitter().GetDate().Time,
		AuthorName:       latest.GetCommit().GetAuthor().GetName(),
		AuthorProfileURL: latest.GetAuthor().GetHTMLURL(),
		CommitURL:        latest.GetHTMLURL(),
		CommitSHA:        latest.GetSHA(),
	}

	c.cache.Set(ctx, key, meta, c.ttl)
	return &meta
}
