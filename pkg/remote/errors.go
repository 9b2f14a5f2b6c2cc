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

package remote

import (
	"fmt"
	"math"
	"time"

	"github.com/walteh/research/pkg/config"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrNotFound      = errors.Base("not found")
	ErrUnauthorized  = errors.Base("unauthorized or private repository")
	ErrRateLimited   = errors.Base("API rate limit exceeded")
	ErrRequestFailed = errors.Base("request failed")
	ErrDecodeFailed  = errors.Base("decode failed")
)

// ⏳ RateLimitError carries the provider's reset time
type RateLimitError struct {
	ResetAt    time.Time
	RetryAfter time.Duration
}

// NewRateLimitError computes the wait from reset relative to now. A zero
// reset means the provider did not say.
func NewRateLimitError(reset, now time.Time) *RateLimitError {
	e := &RateLimitError{ResetAt: reset}
	if !reset.IsZero() && reset.After(now) {
		e.RetryAfter = reset.Sub(now)
	}
	return e
}

// Minutes is the wait rounded up to whole minutes.
func (e *RateLimitError) Minutes() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Minutes()))
}

func (e *RateLimitError) Error() string {
	if m := e.Minutes(); m > 0 {
		return fmt.Sprintf("API rate limit exceeded, try again in %d minutes", m)
	}
	return "API rate limit exceeded"
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RequestError is any other non-success status.
type RequestError struct {
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (HTTP %d)", e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// 💬 UserMessage turns an error from this package (or an invalid
// configuration) into text fit for the person browsing
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rle *RateLimitError
	var reqErr *RequestError

	switch {
	case errors.Is(err, config.ErrInvalid):
		return "Repository configuration is missing or invalid. Open settings and set an owner and repository."
	case errors.As(err, &rle):
		if m := rle.Minutes(); m > 0 {
			return fmt.Sprintf("API rate limit exceeded. Try again in %d minutes.", m)
		}
		return "API rate limit exceeded. Add a GitHub token in settings for higher limits."
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized or private repository. Add a GitHub token in settings."
	case errors.Is(err, ErrNotFound):
		return "File not found."
	case errors.Is(err, ErrDecodeFailed):
		return "This file could not be decoded."
	case errors.As(err, &reqErr):
		return fmt.Sprintf("Failed to fetch (HTTP %d).", reqErr.Status)
	}

	return err.Error()
}
