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

package tree

import (
	"math/rand"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/research/pkg/remote"
)

func file(p string) remote.TreeEntry {
	return remote.TreeEntry{Path: p, Kind: remote.KindFile}
}

func dir(p string) remote.TreeEntry {
	return remote.TreeEntry{Path: p, Kind: remote.KindDirectory}
}

func sample() []remote.TreeEntry {
	return []remote.TreeEntry{
		file("notes/zeta.md"),
		file("README.md"),
		dir("notes"),
		file("notes/Alpha.md"),
		dir("notes/deep"),
		file("notes/deep/x.ipynb"),
		file("apple.md"),
		dir("Zoo"),
		file("notes/alpha.md"),
		file("Zoo/a.png"),
	}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("children_before_parents", func(t *testing.T) {
		roots := Build(sample())

		assert.Equal(t, []string{"notes", "Zoo", "apple.md", "README.md"}, names(roots), "roots should be dirs first then case-folded names")

		notes := Find(roots, "notes")
		require.NotNil(t, notes, "notes should exist")
		assert.Equal(t, []string{"deep", "Alpha.md", "alpha.md", "zeta.md"}, names(notes.Children), "ties on folded name break on raw name")

		deep := Find(roots, "notes/deep/x.ipynb")
		require.NotNil(t, deep, "nested file should be found")
		assert.Equal(t, "x.ipynb", deep.Name, "name should be the last segment")
	})

	t.Run("orphans_become_roots", func(t *testing.T) {
		roots := Build([]remote.TreeEntry{file("missing/parent/a.md"), file("b.md")})
		assert.Equal(t, []string{"a.md", "b.md"}, names(roots), "orphan should be promoted")
		assert.Equal(t, "missing/parent/a.md", roots[0].Path, "orphan keeps its full path")
	})

	t.Run("duplicates_keep_first", func(t *testing.T) {
		roots := Build([]remote.TreeEntry{dir("a"), file("a"), file("a/b.md")})
		require.Len(t, roots, 1, "one root")
		assert.True(t, roots[0].IsDir(), "first occurrence wins")
		assert.Len(t, roots[0].Children, 1, "child attached")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Build(nil), "nil input builds nothing")
	})
}

func TestBuildProperties(t *testing.T) {
	entries := sample()
	rng := rand.New(rand.NewSource(42))

	reference := Build(entries)

	for i := 0; i < 20; i++ {
		shuffled := append([]remote.TreeEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		roots := Build(shuffled)

		assert.Equal(t, reference, roots, "build should not depend on input order")
		assert.Equal(t, len(entries), Count(roots), "node count should equal entry count")

		Walk(roots, func(n *Node, _ int) bool {
			assert.Equal(t, path.Base(n.Path), n.Name, "name should be the final path segment")

			seenFile := false
			for j, c := range n.Children {
				if c.IsDir() {
					assert.False(t, seenFile, "directory %s after a file under %s", c.Path, n.Path)
				} else {
					seenFile = true
				}
				if j > 0 {
					assert.Negative(t, Compare(n.Children[j-1], c), "children of %s should be strictly ordered", n.Path)
				}
			}
			return true
		})
	}
}

func TestCompareIsTotal(t *testing.T) {
	a := &Node{Path: "x/Read.md", Name: "Read.md", Kind: remote.KindFile}
	b := &Node{Path: "y/Read.md", Name: "Read.md", Kind: remote.KindFile}

	assert.Negative(t, Compare(a, b), "same name falls back to path")
	assert.Positive(t, Compare(b, a), "comparison should be antisymmetric")
	assert.Zero(t, Compare(a, a), "a node equals itself")
}

func TestFiles(t *testing.T) {
	entries := []remote.TreeEntry{file("a/readme.md"), dir("a"), file("b/notes.md"), dir("b"), file("index.md")}
	assert.Equal(t, []string{"a/readme.md", "b/notes.md", "index.md"}, Files(entries), "directories should be excluded")
}
