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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/content"
)

// NewShowCmd renders one file
func NewShowCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		outFile string
		toc     bool
	)

	cmd := &cobra.Command{
		Use:   "show <location>",
		Short: "Render a markdown, notebook or code file, or save an image or PDF",
		Example: `  research show /research/python/basics/lists.md
  research show /research/math/plots/svd.png --out svd.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess := newSession(ctx, ro)
			defer sess.Close()

			snap, err := sess.Navigate(ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case snap.Topic == nil:
				return errors.Errorf("no topic matches %q", args[0])
			case snap.FileErr != nil:
				return snap.FileErr
			case snap.View == nil:
				return errors.Errorf("%q is not a file", args[0])
			}

			view := snap.View
			w := cmd.OutOrStdout()

			ro.Console.Header(view.Title)
			if m := view.Metadata; m != nil {
				sha := m.CommitSHA
				if len(sha) > 7 {
					sha = sha[:7]
				}
				ro.Console.Infof("last updated %s by %s (%s)", m.LastUpdated.Format("2006-01-02"), m.AuthorName, sha)
			}
			ro.Console.Infof("source: %s", view.SourceURL)

			if toc && len(view.Headings) > 0 {
				ro.Console.LogNewline()
				for _, h := range view.Headings {
					fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", h.Level-2), h.Text, h.ID)
				}
			}

			if view.Kind.IsBinary() {
				return writeBlob(ro, view, outFile)
			}

			ro.Console.LogNewline()
			fmt.Fprintln(w, view.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write images and PDFs to this file")
	cmd.Flags().BoolVar(&toc, "toc", false, "print the table of contents")

	return cmd
}

func writeBlob(ro *opts.RootOpts, view *content.View, outFile string) error {
	if outFile == "" {
		ro.Console.Infof("%s, %d bytes; use --out to save it", view.Blob.MIMEType(), view.Blob.Size())
		return nil
	}
	if err := os.WriteFile(outFile, view.Blob.Bytes(), 0o644); err != nil {
		return errors.Errorf("writing %s: %w", outFile, err)
	}
	ro.Console.Successf("saved %s (%d bytes)", outFile, view.Blob.Size())
	return nil
}
