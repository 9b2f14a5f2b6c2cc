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

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/cache"
)

// NewCacheCmd manages cached responses
func NewCacheCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached GitHub responses",
	}
	cmd.AddCommand(newCacheClearCmd(ro))
	return cmd
}

func newCacheClearCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [location]",
		Short: "Drop cached responses for the topic at location, or everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ro.Cache == nil {
				return errors.New("no cache configured")
			}

			prefix := cache.Namespace
			what := "all repositories"
			if len(args) == 1 {
				sess := newSession(ctx, ro)
				defer sess.Close()

				topic, ok := sess.MatchTopic(args[0])
				if !ok {
					return errors.Errorf("no topic matches %q", args[0])
				}
				cfg := topic.Repo.Merge(global(ctx, ro))
				prefix = cache.RepoPrefix(cfg.Owner, cfg.CleanRepo())
				what = cfg.Owner + "/" + cfg.CleanRepo()
			}

			ro.Cache.InvalidateByPrefix(ctx, prefix)
			ro.Console.Successf("cleared cache for %s", what)
			return nil
		},
	}
}
