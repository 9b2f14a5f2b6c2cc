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

package cache

import (
	"net/url"
	"strings"
)

// Namespace prefixes every key written by this package.
const Namespace = "gh_cache_v2/"

// 🏷️ Kind is the operation a cached payload belongs to
type Kind string

const (
	KindTree    Kind = "tree"
	KindContent Kind = "content"
	KindMeta    Kind = "meta"
)

// 🔑 Key addresses one cached response.
//
// Components are path-escaped before joining, so "a_b" + "c" and "a" + "b_c"
// never format to the same string, and neither do keys of different kinds.
type Key struct {
	Kind  Kind
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// TreeKey is the key for a recursive tree listing.
func TreeKey(owner, repo, ref string) Key {
	return Key{Kind: KindTree, Owner: owner, Repo: repo, Ref: ref}
}

// ContentKey is the key for a file's text.
func ContentKey(owner, repo, ref, path string) Key {
	return Key{Kind: KindContent, Owner: owner, Repo: repo, Ref: ref, Path: path}
}

// MetaKey is the key for a file's last-commit metadata. Metadata is not
// scoped to a ref.
func MetaKey(owner, repo, path string) Key {
	return Key{Kind: KindMeta, Owner: owner, Repo: repo, Path: path}
}

// String formats Namespace/owner/repo/kind/ref/path.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(RepoPrefix(k.Owner, k.Repo))
	b.WriteString(url.PathEscape(string(k.Kind)))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(k.Ref))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(k.Path))
	return b.String()
}

// RepoPrefix is the prefix shared by every key of one repository.
func RepoPrefix(owner, repo string) string {
	return Namespace + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/"
}
