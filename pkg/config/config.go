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
	"fmt"
	"net/url"
	"path"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalid marks a repository configuration that cannot be used for any request.
var ErrInvalid = errors.Base("repository configuration is missing or invalid")

// 📦 RepositoryConfig identifies one content source
type RepositoryConfig struct {
	Owner       string `json:"owner" yaml:"owner" hcl:"owner,optional"`
	Repo        string `json:"repo" yaml:"repo" hcl:"repo,optional"`
	Branch      string `json:"branch" yaml:"branch" hcl:"branch,optional"`
	SubPath     string `json:"path,omitempty" yaml:"path,omitempty" hcl:"path,optional"`
	AccessToken string `json:"token,omitempty" yaml:"token,omitempty" hcl:"token,optional"`
}

// 🎯 DefaultRepoConfig is used when nothing has been saved yet
var DefaultRepoConfig = RepositoryConfig{
	Owner:  "thameem",
	Repo:   "research",
	Branch: "main",
}

// 🔍 Validate rejects a config that is structurally incomplete
func (c RepositoryConfig) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return errors.WithDetails(ErrInvalid, "field", "owner")
	}
	if strings.TrimSpace(c.CleanRepo()) == "" {
		return errors.WithDetails(ErrInvalid, "field", "repo")
	}
	return nil
}

// CleanRepo returns the repository name without a trailing ".git".
func (c RepositoryConfig) CleanRepo() string {
	return strings.TrimSuffix(strings.TrimSpace(c.Repo), ".git")
}

// Ref returns the branch, defaulting to main.
func (c RepositoryConfig) Ref() string {
	if c.Branch == "" {
		return "main"
	}
	return c.Branch
}

// CleanSubPath returns the sub path without leading or trailing slashes.
func (c RepositoryConfig) CleanSubPath() string {
	p := strings.Trim(c.SubPath, "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// 🔄 Merge returns a copy of c with the token falling back to the global one.
// The receiver is never modified.
func (c RepositoryConfig) Merge(global RepositoryConfig) RepositoryConfig {
	merged := c.Clone()
	if merged.AccessToken == "" {
		merged.AccessToken = global.AccessToken
	}
	return merged
}

// Clone returns an independent copy.
func (c RepositoryConfig) Clone() RepositoryConfig {
	return RepositoryConfig{
		Owner:       c.Owner,
		Repo:        c.Repo,
		Branch:      c.Branch,
		SubPath:     c.SubPath,
		AccessToken: c.AccessToken,
	}
}

// HasToken reports whether requests will be authenticated.
func (c RepositoryConfig) HasToken() bool {
	return c.AccessToken != ""
}

// 🔗 WebURL returns the repository page
func (c RepositoryConfig) WebURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", c.Owner, c.CleanRepo())
}

// BlobURL returns the web page for a file at the configured branch.
func (c RepositoryConfig) BlobURL(file string) string {
	return fmt.Sprintf("%s/blob/%s/%s", c.WebURL(), c.Ref(), strings.TrimPrefix(file, "/"))
}

// 📝 String returns owner/repo@branch[:path], never the token
func (c RepositoryConfig) String() string {
	s := fmt.Sprintf("%s/%s@%s", c.Owner, c.CleanRepo(), c.Ref())
	if sp := c.CleanSubPath(); sp != "" {
		s += ":" + sp
	}
	return s
}

// ParseRepoURL applies a github.com repository URL to base. Owner and repo
// come from the first two path segments; the branch is only taken from
// /tree/{branch} or /blob/{branch} URLs and is kept from base otherwise.
func ParseRepoURL(raw string, base RepositoryConfig) (RepositoryConfig, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return base, errors.Errorf("parsing repository url: %w", err)
	}
	if u.Hostname() != "github.com" {
		return base, errors.Errorf("unsupported repository host %q", u.Hostname())
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 {
		return base, errors.Errorf("repository url %q needs an owner and a repository", raw)
	}

	out := base.Clone()
	out.Owner = parts[0]
	out.Repo = strings.TrimSuffix(parts[1], ".git")
	if len(parts) > 3 && (parts[2] == "tree" || parts[2] == "blob") {
		out.Branch = parts[3]
	}
	return out, nil
}
