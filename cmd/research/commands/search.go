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
	"strings"

	"github.com/spf13/cobra"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/content"
	"github.com/walteh/research/pkg/log"
)

// NewSearchCmd finds files of a topic by name
func NewSearchCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "search <location> <query>",
		Short:   "Find files in a topic whose path contains the query",
		Example: `  research search /research/python decorators`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess := newSession(ctx, ro)
			defer sess.Close()

			if _, err := navigateTopic(ctx, sess, args[0]); err != nil {
				return err
			}

			query := strings.Join(args[1:], " ")
			results := sess.Search(query)
			if len(results) == 0 {
				ro.Console.Warningf("no files match %q", query)
				return nil
			}

			ro.Console.Header("results for " + query)
			for _, p := range results {
				ro.Console.LogFile(ctx, log.FileLine{Path: p, Kind: content.Classify(p).String(), IsMatch: true})
			}
			return nil
		},
	}
}
