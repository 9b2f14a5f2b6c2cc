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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hclTopics = `
topic "python" {
  title = "Python Basics"
  path  = "/research/python/"
  repo {
    owner  = "acme"
    repo   = "notes"
    branch = "dev"
    path   = "python"
  }
}

topic "ml" {
  title = "Machine Learning"
  path  = "/research/ml"
  repo {
    owner = default_owner
  }
}
`

const yamlTopics = `
topics:
  - id: python
    title: Python Basics
    path: /research/python
    repo_config:
      owner: acme
      repo: notes
`

const jsonTopics = `{"topics":[{"id":"python","title":"Python Basics","path":"/research/python","repo_config":{"owner":"acme","repo":"notes","token":"t"}}]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "writing %s", name)
	return path
}

func TestLoadTopics(t *testing.T) {
	ctx := testContext(t)

	t.Run("empty_path_uses_defaults", func(t *testing.T) {
		topics, err := LoadTopics(ctx, "")
		require.NoError(t, err, "loading defaults")
		require.Len(t, topics, 6, "six built-in topics")
		assert.Equal(t, DefaultRepoConfig, topics[0].Repo, "default topics use the default repo")
	})

	t.Run("hcl", func(t *testing.T) {
		topics, err := LoadTopics(ctx, writeFile(t, "topics.hcl", hclTopics))
		require.NoError(t, err, "loading hcl")
		require.Len(t, topics, 2, "two topics")

		assert.Equal(t, "python", topics[0].ID, "label becomes id")
		assert.Equal(t, "/research/python", topics[0].Path, "trailing slash trimmed")
		assert.Equal(t, RepositoryConfig{Owner: "acme", Repo: "notes", Branch: "dev", SubPath: "python"}, topics[0].Repo, "repo block decoded")

		assert.Equal(t, DefaultRepoConfig.Owner, topics[1].Repo.Owner, "variables resolve")
		assert.Equal(t, DefaultRepoConfig.Repo, topics[1].Repo.Repo, "defaults fill missing fields")
	})

	t.Run("yaml", func(t *testing.T) {
		topics, err := LoadTopics(ctx, writeFile(t, "topics.yaml", yamlTopics))
		require.NoError(t, err, "loading yaml")
		require.Len(t, topics, 1, "one topic")
		assert.Equal(t, "notes", topics[0].Repo.Repo, "repo decoded")
		assert.Equal(t, "main", topics[0].Repo.Branch, "branch defaulted")
	})

	t.Run("json", func(t *testing.T) {
		topics, err := LoadTopics(ctx, writeFile(t, "topics.json", jsonTopics))
		require.NoError(t, err, "loading json")
		require.Len(t, topics, 1, "one topic")
		assert.Equal(t, "t", topics[0].Repo.AccessToken, "token decoded")
	})

	t.Run("unknown_yaml_field", func(t *testing.T) {
		_, err := LoadTopics(ctx, writeFile(t, "topics.yml", "topics:\n  - id: a\n    bogus: 1\n"))
		require.Error(t, err, "unknown fields should fail")
		assert.Contains(t, err.Error(), "parsing YAML", "error should name the format")
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		_, err := LoadTopics(ctx, writeFile(t, "topics.toml", ""))
		require.Error(t, err, "toml is unsupported")
		assert.Contains(t, err.Error(), "unsupported file extension", "error should explain")
	})

	t.Run("duplicate_ids", func(t *testing.T) {
		dup := `{"topics":[{"id":"a","title":"A","path":"/a"},{"id":"a","title":"B","path":"/b"}]}`
		_, err := LoadTopics(ctx, writeFile(t, "topics.json", dup))
		require.Error(t, err, "duplicate ids should fail")
		assert.Contains(t, err.Error(), "duplicate id", "error should explain")
	})
}
