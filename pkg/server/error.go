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

package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps err to a status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, remote.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, remote.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrNoTopic):
		return http.StatusNotFound, "no_topic"
	case errors.Is(err, config.ErrInvalid):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, remote.ErrDecodeFailed):
		return http.StatusBadGateway, "decode_failed"
	case errors.Is(err, remote.ErrRequestFailed):
		return http.StatusBadGateway, "request_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	status, code := classify(err)

	msg := remote.UserMessage(err)
	switch code {
	case "no_topic":
		msg = "No research topic covers this location."
	case "bad_request":
		msg = err.Error()
	case "internal":
		msg = "Internal error."
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	if rle := (*remote.RateLimitError)(nil); errors.As(err, &rle) && !rle.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", rle.ResetAt.UTC().Format(http.TimeFormat))
	}

	writeJSON(w, r, status, errorResponse{Error: code, Message: msg})
}
