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

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/log"
	"github.com/walteh/research/pkg/tree"
)

// NewTreeCmd prints the file tree of a topic
func NewTreeCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <location>",
		Short: "Show the file tree of the topic covering a location",
		Example: `  research tree /research/python
  research tree /research/machine-learning/notebooks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess := newSession(ctx, ro)
			defer sess.Close()

			snap, err := navigateTopic(ctx, sess, args[0])
			if err != nil {
				return err
			}

			ro.Console.StartTopic(ctx, log.TopicHeader{
				Title:    snap.Topic.Title,
				Repo:     snap.Config.Owner + "/" + snap.Config.CleanRepo(),
				Ref:      snap.Config.Ref(),
				Location: snap.Topic.Path,
			})
			defer ro.Console.EndTopic(ctx)

			if len(snap.Tree) == 0 {
				ro.Console.Warning("no files found")
				return nil
			}

			out, err := RenderTree(snap.Topic.Title, snap.Tree)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// RenderTree draws nodes below a root labelled title.
func RenderTree(title string, nodes []*tree.Node) (string, error) {
	root := pterm.TreeNode{Text: title, Children: treeNodes(nodes)}
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return "", errors.Errorf("rendering tree: %w", err)
	}
	return out, nil
}

func treeNodes(nodes []*tree.Node) []pterm.TreeNode {
	out := make([]pterm.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		text := n.Name
		if n.IsDir() {
			text += "/"
		}
		out = append(out, pterm.TreeNode{Text: text, Children: treeNodes(n.Children)})
	}
	return out
}
