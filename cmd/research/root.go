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

package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/log"
	"github.com/walteh/research/pkg/remote/github"
)

var (
	// Flags
	stateDir   string
	topicsFile string
	redisAddr  string
	cacheTTL   time.Duration
	debug      bool
)

func newRootCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Browse research notes kept in GitHub repositories",
		Long: `research lists, searches and renders the markdown, notebooks, code and
images of research topics backed by GitHub repositories. Responses are cached
locally (or in Redis) so browsing stays within the API rate limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			ro.Console = log.New(cmd.OutOrStdout(), level)

			ctx := log.NewContext(cmd.Context(), ro.Console)
			cmd.SetContext(ctx)

			return initRootOpts(ctx, ro)
		},
	}

	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "directory for saved settings and the file cache")
	cmd.PersistentFlags().StringVarP(&topicsFile, "topics", "t", "", "topics file (.hcl, .yaml or .json); built-in topics when empty")
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "cache in redis at this address instead of the state directory")
	cmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", cache.DefaultTTL, "how long fetched responses are reused")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func defaultStateDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".research"
	}
	return filepath.Join(dir, "research")
}

// initRootOpts wires topics, the cache backend, the settings store and the
// GitHub client into ro.
func initRootOpts(ctx context.Context, ro *opts.RootOpts) error {
	logger := zerolog.Ctx(ctx)

	topics, err := config.LoadTopics(ctx, topicsFile)
	if err != nil {
		return errors.Errorf("loading topics: %w", err)
	}

	var backend cache.Backend
	if redisAddr != "" {
		logger.Debug().Str("addr", redisAddr).Msg("using redis cache")
		backend = cache.NewRedisBackend(redis.NewClient(&redis.Options{Addr: redisAddr}))
	} else {
		fb, err := cache.NewFileBackend(filepath.Join(stateDir, "cache"))
		if err != nil {
			return errors.Errorf("creating file cache: %w", err)
		}
		logger.Debug().Str("dir", fb.Dir()).Msg("using file cache")
		backend = fb
	}

	store := cache.New(backend)

	ro.Topics = topics
	ro.Cache = store
	ro.Store = config.NewStore(stateDir, store, cache.Namespace)
	ro.Fetcher = github.New(github.WithCache(store), github.WithTTL(cacheTTL))

	return nil
}
