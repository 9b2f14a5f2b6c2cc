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

// Package tree turns a flat repository listing into an ordered hierarchy.
package tree

import (
	"path"
	"slices"
	"strings"

	"github.com/walteh/research/pkg/remote"
)

// 🌿 Node is one file or directory in a built tree
type Node struct {
	Path     string           `json:"path"`
	Name     string           `json:"name"`
	Kind     remote.EntryKind `json:"kind"`
	Children []*Node          `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	return n.Kind == remote.KindDirectory
}

// 🏗️ Build nests entries under their parents.
//
// Entries may arrive in any order, so every entry becomes a node before any
// is attached. An entry whose parent is missing from the listing is promoted
// to a root. A repeated path keeps its first occurrence.
func Build(entries []remote.TreeEntry) []*Node {
	nodes := make(map[string]*Node, len(entries))
	order := make([]*Node, 0, len(entries))

	for _, e := range entries {
		p := strings.Trim(e.Path, "/")
		if p == "" {
			continue
		}
		if _, dup := nodes[p]; dup {
			continue
		}
		n := &Node{
			Path: p,
			Name: path.Base(p),
			Kind: e.Kind,
		}
		nodes[p] = n
		order = append(order, n)
	}

	var roots []*Node
	for _, n := range order {
		i := strings.LastIndexByte(n.Path, '/')
		if i < 0 {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[n.Path[:i]]; ok {
			parent.Children = append(parent.Children, n)
			continue
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	slices.SortFunc(nodes, Compare)
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortNodes(n.Children)
		}
	}
}

// Compare orders directories before files, then by case-folded name, then by
// raw name, then by full path. It is total over distinct paths.
func Compare(a, b *Node) int {
	if ad, bd := a.IsDir(), b.IsDir(); ad != bd {
		if ad {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}

// Walk visits nodes depth first in tree order. Returning false from fn skips
// the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) && len(n.Children) > 0 {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Count is the number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Files lists the file paths of a flat listing, in listing order.
func Files(entries []remote.TreeEntry) []string {
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Path)
		}
	}
	return files
}

// Find returns the node at p, or nil.
func Find(nodes []*Node, p string) *Node {
	p = strings.Trim(p, "/")
	var found *Node
	Walk(nodes, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Path == p {
			found = n
			return false
		}
		return strings.HasPrefix(p, n.Path+"/")
	})
	return found
}
