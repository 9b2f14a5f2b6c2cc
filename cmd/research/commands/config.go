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
	"github.com/walteh/research/pkg/config"
)

// NewConfigCmd reads and writes the saved repository settings
func NewConfigCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the saved repository settings",
	}
	cmd.AddCommand(newConfigGetCmd(ro), newConfigSetCmd(ro))
	return cmd
}

func newConfigGetCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ro.Store == nil {
				return errors.New("no settings store")
			}
			cfg := ro.Store.Load(cmd.Context())

			token := "not set"
			if cfg.HasToken() {
				token = "set"
			}

			ro.Console.Infof("repository: %s", cfg)
			ro.Console.Infof("web: %s", cfg.WebURL())
			ro.Console.Infof("token: %s", token)
			ro.Console.Infof("file: %s", ro.Store.Path())
			return nil
		},
	}
}

func newConfigSetCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		repoURL    string
		update     config.RepositoryConfig
		clearToken bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the saved settings; the cache is cleared on save",
		Example: `  research config set --url https://github.com/acme/notes/tree/dev
  research config set --token ghp_xxx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ro.Store == nil {
				return errors.New("no settings store")
			}

			cfg := ro.Store.Load(ctx)
			if repoURL != "" {
				parsed, err := config.ParseRepoURL(repoURL, cfg)
				if err != nil {
					return err
				}
				cfg = parsed
			}

			cfg = applySettings(cfg, update, clearToken)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := ro.Store.Save(ctx, cfg); err != nil {
				return errors.Errorf("saving settings: %w", err)
			}
			ro.Console.Successf("saved settings for %s", cfg)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoURL, "url", "", "github.com repository url, optionally with /tree/<branch>")
	cmd.Flags().StringVar(&update.Owner, "owner", "", "repository owner")
	cmd.Flags().StringVar(&update.Repo, "repo", "", "repository name")
	cmd.Flags().StringVar(&update.Branch, "branch", "", "branch, tag or commit")
	cmd.Flags().StringVar(&update.SubPath, "path", "", "sub directory holding the notes")
	cmd.Flags().StringVar(&update.AccessToken, "token", "", "GitHub access token")
	cmd.Flags().BoolVar(&clearToken, "clear-token", false, "remove the saved token")

	return cmd
}

// applySettings overlays the non-empty fields of update on cfg.
func applySettings(cfg, update config.RepositoryConfig, clearToken bool) config.RepositoryConfig {
	out := update.WithDefaults(cfg)
	if clearToken {
		out.AccessToken = ""
	}
	return out
}
