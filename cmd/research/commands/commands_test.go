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

package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/commands"
	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/log"
	"github.com/walteh/research/pkg/remote"
	"github.com/walteh/research/pkg/tree"
)

type fakeFetcher struct {
	entries []remote.TreeEntry
	files   map[string]string
}

func (f *fakeFetcher) FetchTree(ctx context.Context, cfg config.RepositoryConfig) ([]remote.TreeEntry, error) {
	return f.entries, nil
}

func (f *fakeFetcher) FetchFileContent(ctx context.Context, cfg config.RepositoryConfig, p string) (string, error) {
	body, ok := f.files[p]
	if !ok {
		return "", errors.WithStack(remote.ErrNotFound)
	}
	return body, nil
}

func (f *fakeFetcher) FetchFileBlob(ctx context.Context, cfg config.RepositoryConfig, p string) ([]byte, error) {
	body, err := f.FetchFileContent(ctx, cfg, p)
	return []byte(body), err
}

func (f *fakeFetcher) FetchFileMetadata(ctx context.Context, cfg config.RepositoryConfig, p string) *remote.FileMetadata {
	return &remote.FileMetadata{
		AuthorName:  "Jane",
		CommitSHA:   "0123456789abcdef",
		LastUpdated: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

type harness struct {
	ro  *opts.RootOpts
	out *bytes.Buffer
	mem *cache.MemoryBackend
}

func newHarness(t *testing.T) *harness {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	out := &bytes.Buffer{}
	mem := cache.NewMemoryBackend()
	store := cache.New(mem)

	return &harness{
		out: out,
		mem: mem,
		ro: &opts.RootOpts{
			Topics: []config.Topic{
				{ID: "py", Title: "Python", Path: "/research/python", Repo: config.RepositoryConfig{Owner: "acme", Repo: "docs", Branch: "main"}},
				{ID: "ml", Title: "ML", Path: "/research/ml", Repo: config.RepositoryConfig{Owner: "acme", Repo: "ml", Branch: "main"}},
			},
			Store: config.NewStore(t.TempDir(), store, cache.Namespace),
			Cache: store,
			Fetcher: &fakeFetcher{
				entries: []remote.TreeEntry{
					{Path: "basics", Kind: remote.KindDirectory},
					{Path: "basics/lists.md", Kind: remote.KindFile},
					{Path: "plot.png", Kind: remote.KindFile},
				},
				files: map[string]string{
					"basics/lists.md": "# Lists\n\n## Slicing\n",
					"plot.png":        "\x89PNG",
				},
			},
			Console: log.New(out, zerolog.Disabled),
		},
	}
}

func (h *harness) run(t *testing.T, cmd *cobra.Command, args ...string) error {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	cmd.SetOut(h.out)
	cmd.SetErr(h.out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(logger.WithContext(context.Background()))
}

func TestTopicsCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, commands.NewTopicsCmd(h.ro)), "topics should succeed")
	assert.Contains(t, h.out.String(), "/research/python", "topic path listed")
	assert.Contains(t, h.out.String(), "acme/docs@main", "repository listed")
}

func TestTreeCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, commands.NewTreeCmd(h.ro), "/research/python/basics"), "tree should succeed")

	out := h.out.String()
	assert.Contains(t, out, "[browsing /research/python]", "topic header")
	assert.Contains(t, out, "basics/", "directory rendered")
	assert.Contains(t, out, "lists.md", "nested file rendered")
	assert.Contains(t, out, "plot.png", "root file rendered")
}

func TestTreeCmdNoTopic(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, commands.NewTreeCmd(h.ro), "/about")
	assert.Error(t, err, "unknown location should fail")
}

func TestRenderTree(t *testing.T) {
	nodes := tree.Build([]remote.TreeEntry{
		{Path: "a", Kind: remote.KindDirectory},
		{Path: "a/b.md", Kind: remote.KindFile},
	})

	out, err := commands.RenderTree("Topic", nodes)
	require.NoError(t, err, "render should succeed")
	assert.Contains(t, out, "Topic", "root label")
	assert.Contains(t, out, "a/", "directory marked")
	assert.Contains(t, out, "b.md", "child rendered")
}

func TestShowCmd(t *testing.T) {
	t.Run("markdown_with_toc", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run(t, commands.NewShowCmd(h.ro), "/research/python/basics/lists.md", "--toc"), "show should succeed")

		out := h.out.String()
		assert.Contains(t, out, "research • lists", "title header")
		assert.Contains(t, out, "last updated 2024-03-01 by Jane (0123456)", "metadata line")
		assert.Contains(t, out, "source: https://github.com/acme/docs/blob/main/basics/lists.md", "source url")
		assert.Contains(t, out, "- Slicing (#slicing)", "toc entry")
		assert.Contains(t, out, "## Slicing", "markdown body")
	})

	t.Run("image_to_file", func(t *testing.T) {
		h := newHarness(t)
		dst := filepath.Join(t.TempDir(), "plot.png")

		require.NoError(t, h.run(t, commands.NewShowCmd(h.ro), "/research/python/plot.png", "--out", dst), "show should succeed")

		data, err := os.ReadFile(dst)
		require.NoError(t, err, "file should be written")
		assert.Equal(t, "\x89PNG", string(data), "blob bytes saved")
	})

	t.Run("missing_file", func(t *testing.T) {
		h := newHarness(t)

		err := h.run(t, commands.NewShowCmd(h.ro), "/research/python/gone.md")
		assert.ErrorIs(t, err, remote.ErrNotFound, "missing file fails")
	})
}

func TestSearchCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, commands.NewSearchCmd(h.ro), "/research/python", "LIST"), "search should succeed")
	assert.Contains(t, h.out.String(), "✓ basics/lists.md", "match listed")
	assert.NotContains(t, h.out.String(), "plot.png", "non matches skipped")
}

func TestConfigCmd(t *testing.T) {
	t.Run("set_from_url_clears_cache", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.ro.Cache.Set(ctx, cache.TreeKey("acme", "docs", "main").String(), []string{"x"}, time.Minute)
		require.Equal(t, 1, h.mem.Len(), "cache primed")

		err := h.run(t, commands.NewConfigCmd(h.ro), "set", "--url", "https://github.com/acme/notes.git/tree/dev", "--token", "abc")
		require.NoError(t, err, "set should succeed")

		cfg := h.ro.Store.Load(ctx)
		assert.Equal(t, "acme", cfg.Owner, "owner from url")
		assert.Equal(t, "notes", cfg.Repo, ".git stripped")
		assert.Equal(t, "dev", cfg.Branch, "branch from url")
		assert.Equal(t, "abc", cfg.AccessToken, "token saved")
		assert.Zero(t, h.mem.Len(), "save sweeps the cache")
	})

	t.Run("clear_token", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.run(t, commands.NewConfigCmd(h.ro), "set", "--token", "abc"), "set token")
		require.NoError(t, h.run(t, commands.NewConfigCmd(h.ro), "set", "--clear-token"), "clear token")

		cfg := h.ro.Store.Load(context.Background())
		assert.Empty(t, cfg.AccessToken, "token removed")
		assert.Equal(t, config.DefaultRepoConfig.Owner, cfg.Owner, "other fields kept")
	})

	t.Run("get_hides_token", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.run(t, commands.NewConfigCmd(h.ro), "set", "--token", "very-secret"), "set token")
		h.out.Reset()

		require.NoError(t, h.run(t, commands.NewConfigCmd(h.ro), "get"), "get should succeed")
		assert.Contains(t, h.out.String(), "token: set", "token presence shown")
		assert.NotContains(t, h.out.String(), "very-secret", "token value hidden")
	})

	t.Run("bad_url", func(t *testing.T) {
		h := newHarness(t)
		err := h.run(t, commands.NewConfigCmd(h.ro), "set", "--url", "https://gitlab.com/acme/notes")
		assert.Error(t, err, "non github urls are rejected")
	})
}

func TestCacheClearCmd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.ro.Cache.Set(ctx, cache.TreeKey("acme", "docs", "main").String(), []string{"x"}, time.Minute)
	h.ro.Cache.Set(ctx, cache.TreeKey("acme", "ml", "main").String(), []string{"y"}, time.Minute)

	require.NoError(t, h.run(t, commands.NewCacheCmd(h.ro), "clear", "/research/python"), "clear one topic")
	assert.Equal(t, 1, h.mem.Len(), "only the topic's repository is cleared")

	require.NoError(t, h.run(t, commands.NewCacheCmd(h.ro), "clear"), "clear everything")
	assert.Zero(t, h.mem.Len(), "all entries cleared")
}
