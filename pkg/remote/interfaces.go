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

// Package remote describes read access to a hosted Git repository: a flat
// tree listing, file text, file bytes and last-commit metadata.
package remote

import (
	"context"
	"time"

	"github.com/walteh/research/pkg/config"
)

// EntryKind tells files and directories apart in a flat listing.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// TreeEntry is one row of a recursive tree listing. Path is slash separated
// and relative to the configured sub path.
type TreeEntry struct {
	Path string    `json:"path"`
	Kind EntryKind `json:"kind"`
}

func (e TreeEntry) IsDir() bool {
	return e.Kind == KindDirectory
}

// FileMetadata describes the most recent commit touching a file.
type FileMetadata struct {
	LastUpdated      time.Time `json:"last_updated"`
	AuthorName       string    `json:"author_name"`
	AuthorProfileURL string    `json:"author_profile_url,omitempty"`
	CommitURL        string    `json:"commit_url"`
	CommitSHA        string    `json:"commit_sha"`
}

// 📡 Fetcher is the read side of a remote repository.
//
// Every call takes the repository explicitly; implementations hold no
// per-repository state beyond their cache.
type Fetcher interface {
	// FetchTree lists directories and allow-listed files. A repository or
	// branch that does not exist yields an empty listing, not an error.
	FetchTree(ctx context.Context, cfg config.RepositoryConfig) ([]TreeEntry, error)
	// FetchFileContent returns the text of one file.
	FetchFileContent(ctx context.Context, cfg config.RepositoryConfig, path string) (string, error)
	// FetchFileBlob returns the raw bytes of one file. Blobs are not cached.
	FetchFileBlob(ctx context.Context, cfg config.RepositoryConfig, path string) ([]byte, error)
	// FetchFileMetadata returns nil on any failure.
	FetchFileMetadata(ctx context.Context, cfg config.RepositoryConfig, path string) *FileMetadata
}

// Tier names where file bytes came from.
type Tier int

const (
	// TierAPI is the authenticated contents endpoint.
	TierAPI Tier = iota
	// TierRaw is the unauthenticated raw content host, used only after the
	// API tier fails with something other than a cancelled context.
	TierRaw
)

func (t Tier) String() string {
	switch t {
	case TierAPI:
		return "api"
	case TierRaw:
		return "raw"
	}
	return "unknown"
}
