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

// Package server exposes topics, trees, files and search as a JSON API for
// a browser front end.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/content"
	"github.com/walteh/research/pkg/remote"
	"github.com/walteh/research/pkg/session"
	"github.com/walteh/research/pkg/tree"
)

// ErrNoTopic is returned for a location no topic covers.
var ErrNoTopic = errors.Base("no topic matches location")

// ErrBadRequest marks a malformed request.
var ErrBadRequest = errors.Base("bad request")

// Settings supplies the global repository settings. *config.Store satisfies it.
type Settings interface {
	Load(ctx context.Context) config.RepositoryConfig
}

// 🌐 Server routes the JSON API
type Server struct {
	router   *chi.Mux
	fetcher  remote.Fetcher
	topics   []config.Topic
	settings Settings
	grace    time.Duration
	logger   zerolog.Logger
}

type Options func(*Server)

func WithSettings(settings Settings) Options {
	return func(s *Server) {
		s.settings = settings
	}
}

// WithMetadataGrace overrides how long file responses wait on commit metadata.
func WithMetadataGrace(d time.Duration) Options {
	return func(s *Server) {
		s.grace = d
	}
}

// WithLogger sets the base logger for request logs.
func WithLogger(logger zerolog.Logger) Options {
	return func(s *Server) {
		s.logger = logger
	}
}

// 🏭 New builds the router
func New(f remote.Fetcher, topics []config.Topic, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		fetcher: f,
		topics:  topics,
		grace:   content.MetadataGrace,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(s.loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", s.topicsHandler)
		r.Get("/tree", s.treeHandler)
		r.Get("/file", s.fileHandler)
		r.Get("/raw", s.rawHandler)
		r.Get("/search", s.searchHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type topicsResponse struct {
	Topics []config.Topic `json:"topics"`
}

type treeResponse struct {
	Topic config.Topic `json:"topic"`
	Tree  []*tree.Node `json:"tree"`
	Files []string     `json:"files"`
}

type fileResponse struct {
	*content.View
	MIMEType string `json:"mime_type,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type searchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

func (s *Server) topicsHandler(w http.ResponseWriter, r *http.Request) {
	topics := make([]config.Topic, len(s.topics))
	for i, t := range s.topics {
		t.Repo.AccessToken = ""
		topics[i] = t
	}
	writeJSON(w, r, http.StatusOK, topicsResponse{Topics: topics})
}

func (s *Server) treeHandler(w http.ResponseWriter, r *http.Request) {
	sess, snap, err := s.navigateTopic(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer sess.Close()

	topic := *snap.Topic
	topic.Repo.AccessToken = ""
	writeJSON(w, r, http.StatusOK, treeResponse{Topic: topic, Tree: emptyIfNil(snap.Tree), Files: emptyIfNil(snap.Files)})
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.navigateTopic(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer sess.Close()

	q := r.URL.Query().Get("q")
	writeJSON(w, r, http.StatusOK, searchResponse{Query: q, Results: emptyIfNil(sess.Search(q))})
}

func (s *Server) fileHandler(w http.ResponseWriter, r *http.Request) {
	sess, view, err := s.navigateFile(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer sess.Close()

	resp := fileResponse{View: view}
	if view.Blob != nil {
		resp.MIMEType, resp.Size = view.Blob.MIMEType(), view.Blob.Size()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) rawHandler(w http.ResponseWriter, r *http.Request) {
	sess, view, err := s.navigateFile(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer sess.Close()

	if view.Blob == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(view.Text))
		return
	}

	w.Header().Set("Content-Type", view.Blob.MIMEType())
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(view.Blob.Bytes())
}

func (s *Server) newSession(ctx context.Context) *session.Session {
	var global config.RepositoryConfig
	if s.settings != nil {
		global = s.settings.Load(ctx)
	}
	return session.New(s.fetcher, s.topics,
		session.WithGlobal(global),
		session.WithResolver(content.NewResolver(s.fetcher, content.WithMetadataGrace(s.grace))),
	)
}

func location(r *http.Request) (string, error) {
	loc := r.URL.Query().Get("location")
	if loc == "" {
		return "", errors.Errorf("%w: location is required", ErrBadRequest)
	}
	return loc, nil
}

// navigateTopic loads the tree of the topic covering the request location.
func (s *Server) navigateTopic(r *http.Request) (*session.Session, *session.Snapshot, error) {
	loc, err := location(r)
	if err != nil {
		return nil, nil, err
	}

	sess := s.newSession(r.Context())
	topic, ok := sess.MatchTopic(loc)
	if !ok {
		return nil, nil, errors.WithDetails(ErrNoTopic, "location", loc)
	}

	snap, err := sess.Navigate(r.Context(), topic.Path)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}
	return sess, snap, nil
}

// navigateFile loads the file at the request location.
func (s *Server) navigateFile(r *http.Request) (*session.Session, *content.View, error) {
	loc, err := location(r)
	if err != nil {
		return nil, nil, err
	}

	sess := s.newSession(r.Context())
	snap, err := sess.Navigate(r.Context(), loc)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}

	switch {
	case snap.Topic == nil:
		return nil, nil, errors.WithDetails(ErrNoTopic, "location", loc)
	case snap.FileErr != nil:
		sess.Close()
		return nil, nil, snap.FileErr
	case snap.View == nil:
		sess.Close()
		return nil, nil, errors.Errorf("%w: %s is not a file", ErrBadRequest, loc)
	}
	return sess, snap.View, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already sent
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("encoding response")
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
