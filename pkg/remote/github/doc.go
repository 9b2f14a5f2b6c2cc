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

/*
Package github implements remote.Fetcher against the GitHub REST API, with the
raw content host as a fallback tier for file bodies.

	            +-------------+
	            |   Client    |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |                           |
	+----+-----+              +------+-----+
	|  cache   |              |   tiers    |
	| (Store)  |              | api -> raw |
	+----------+              +------------+

🔄 Flow:
 1. Validate the repository config; an invalid one never reaches the network
 2. Read through the cache (tree, content and metadata keys)
 3. On a miss, ask the REST API (token transport when a token is set)
 4. For content only, fall back to the unauthenticated raw host
 5. Store successful responses with the configured TTL

⚡ Error mapping:
  - 404: remote.ErrNotFound (an empty tree instead, for FetchTree)
  - 401: remote.ErrUnauthorized
  - 403/429: *remote.RateLimitError, with the reset time when one is sent
  - other statuses: *remote.RequestError
  - bodies that do not decode: remote.ErrDecodeFailed

🔍 Example:

	c := github.New(github.WithCache(store), github.WithTTL(5*time.Minute))

	entries, err := c.FetchTree(ctx, cfg)
	body, err := c.FetchFileContent(ctx, cfg, "ml/intro.md")
	meta := c.FetchFileMetadata(ctx, cfg, "ml/intro.md")
*/
package github
