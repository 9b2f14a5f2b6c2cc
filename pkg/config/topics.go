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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📚 Topic is one research area backed by a repository
type Topic struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Path        string           `json:"path" yaml:"path"` // e.g. /research/python
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string           `json:"color,omitempty" yaml:"color,omitempty"`
	Repo        RepositoryConfig `json:"repo_config" yaml:"repo_config"`
}

// TopicsFile is the on-disk shape of a topics file.
type TopicsFile struct {
	Topics []Topic `json:"topics" yaml:"topics"`
}

// WithDefaults fills every empty field of c from d.
func (c RepositoryConfig) WithDefaults(d RepositoryConfig) RepositoryConfig {
	out := c.Clone()
	if out.Owner == "" {
		out.Owner = d.Owner
	}
	if out.Repo == "" {
		out.Repo = d.Repo
	}
	if out.Branch == "" {
		out.Branch = d.Branch
	}
	if out.SubPath == "" {
		out.SubPath = d.SubPath
	}
	if out.AccessToken == "" {
		out.AccessToken = d.AccessToken
	}
	return out
}

// 🏭 NewTopic builds a topic whose repository config is layered over DefaultRepoConfig
func NewTopic(id, title, path, description, icon, color string, repo RepositoryConfig) Topic {
	return Topic{
		ID:          id,
		Title:       title,
		Path:        path,
		Description: description,
		Icon:        icon,
		Color:       color,
		Repo:        repo.WithDefaults(DefaultRepoConfig),
	}
}

// DefaultTopics returns the built-in research topics.
func DefaultTopics() []Topic {
	return []Topic{
		NewTopic("1", "Machine Learning", "/research/machine-learning", "Supervised and unsupervised learning algorithms, model evaluation, and neural networks.", "Book", "text-blue-400", RepositoryConfig{}),
		NewTopic("2", "Python Basics", "/research/python", "Core concepts, data structures, and advanced features of the Python language.", "Code", "text-yellow-400", RepositoryConfig{}),
		NewTopic("3", "Data Analytics", "/research/data-analytics", "Data processing, visualization, and statistical analysis techniques.", "Database", "text-purple-400", RepositoryConfig{}),
		NewTopic("4", "Mathematics for ML", "/research/math", "Linear algebra, calculus, probability, and statistics foundations.", "FileText", "text-red-400", RepositoryConfig{}),
		NewTopic("5", "Flask Framework", "/research/flask", "Building web applications and REST APIs with Flask.", "Server", "text-green-400", RepositoryConfig{}),
		NewTopic("6", "System Design", "/research/system-design", "Scalable architecture patterns and distributed systems.", "Terminal", "text-orange-400", RepositoryConfig{}),
	}
}

// 🔍 ValidateTopics checks ids and paths and applies repository defaults in place
func ValidateTopics(topics []Topic) error {
	seen := map[string]bool{}
	for i := range topics {
		t := &topics[i]
		if t.ID == "" {
			return errors.Errorf("topic %d: id is required", i)
		}
		if seen[t.ID] {
			return errors.Errorf("topic %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if !strings.HasPrefix(t.Path, "/") {
			return errors.Errorf("topic %q: path %q must start with /", t.ID, t.Path)
		}
		t.Path = strings.TrimRight(t.Path, "/")
		t.Repo = t.Repo.WithDefaults(DefaultRepoConfig)
	}
	return nil
}
