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

package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"

	"github.com/walteh/research/pkg/cache"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

const (
	// DefaultRawBaseURL serves public file bytes without touching the API quota.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	rawMediaType = "application/vnd.github.v3.raw"
)

var _ remote.Fetcher = (*Client)(nil)

// 🐙 Client fetches trees, files and commit metadata from GitHub
type Client struct {
	httpClient *http.Client
	rawClient  *http.Client
	apiBaseURL *url.URL
	rawBaseURL string
	cache      *cache.Store
	ttl        time.Duration
	now        func() time.Time
	allow      []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for API calls. Tokens are layered on
// top of its transport per call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRawHTTPClient sets the client used for the raw content host.
func WithRawHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rawClient = hc
	}
}

// WithAPIBaseURL points the API tier at another host, such as GitHub Enterprise.
func WithAPIBaseURL(u *url.URL) Option {
	return func(c *Client) {
		c.apiBaseURL = u
	}
}

func WithRawBaseURL(base string) Option {
	return func(c *Client) {
		c.rawBaseURL = strings.TrimSuffix(base, "/")
	}
}

func WithCache(store *cache.Store) Option {
	return func(c *Client) {
		c.cache = store
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithClock replaces time.Now for rate limit estimates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithAllowPatterns replaces the file allow-list. Patterns are doublestar
// globs matched against the lowercased repository path.
func WithAllowPatterns(patterns ...string) Option {
	return func(c *Client) {
		c.allow = patterns
	}
}

// 🏭 New creates a client. Without WithCache an in-memory cache is used.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rawClient:  &http.Client{Timeout: 30 * time.Second},
		rawBaseURL: DefaultRawBaseURL,
		ttl:        cache.DefaultTTL,
		now:        time.Now,
		allow:      DefaultAllowPatterns,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New(cache.NewMemoryBackend(), cache.WithClock(c.now))
	}
	return c
}

// Cache exposes the store so callers can invalidate it on configuration changes.
func (c *Client) Cache() *cache.Store {
	return c.cache
}

// api builds a go-github client for one call, with the repository's token
// (if any) sent as "Authorization: token <value>".
func (c *Client) api(cfg config.RepositoryConfig) *github.Client {
	hc := c.httpClient
	if cfg.HasToken() {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc = &http.Client{
			Timeout: hc.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{
					AccessToken: cfg.AccessToken,
					TokenType:   "token",
				}),
				Base: base,
			},
		}
	}

	gh := github.NewClient(hc)
	if c.apiBaseURL != nil {
		u := *c.apiBaseURL
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		gh.BaseURL = &u
	}
	return gh
}

// classify maps a go-github failure onto the remote error taxonomy.
func (c *Client) classify(resp *github.Response, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.WithStack(err)
	}

	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return remote.NewRateLimitError(rle.Rate.Reset.Time, c.now())
	}

	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		wait := abuse.GetRetryAfter()
		return remote.NewRateLimitError(c.now().Add(wait), c.now())
	}

	var httpResp *http.Response
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		httpResp = er.Response
	} else if resp != nil {
		httpResp = resp.Response
	}
	if httpResp == nil {
		return errors.Errorf("github request: %w", err)
	}
	if httpResp.StatusCode < http.StatusMultipleChoices {
		return errors.WithDetails(remote.ErrDecodeFailed, "cause", err.Error())
	}

	return c.statusError(httpResp)
}

// statusError maps a non-success response onto the remote error taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.WithStack(remote.ErrNotFound)
	case http.StatusUnauthorized:
		return errors.WithStack(remote.ErrUnauthorized)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return remote.NewRateLimitError(parseReset(resp.Header), c.now())
	}
	return &remote.RequestError{Status: resp.StatusCode}
}
