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

// Package content resolves a selected repository path into something
// displayable: rendered markdown, a fenced code listing or a binary blob,
// plus best-effort commit metadata.
package content

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/remote"
)

// MetadataGrace bounds how long a finished content load waits on metadata.
const MetadataGrace = 2 * time.Second

// ErrSuperseded is returned for a selection replaced before it finished.
var ErrSuperseded = errors.Base("selection superseded by a newer one")

// 🖼️ View is a resolved file
type View struct {
	Path      string               `json:"path"`
	Kind      Kind                 `json:"kind"`
	Title     string               `json:"title"`
	SourceURL string               `json:"source_url"`
	Text      string               `json:"text,omitempty"`
	Headings  []Heading            `json:"headings,omitempty"`
	Blob      *Blob                `json:"-"`
	Metadata  *remote.FileMetadata `json:"metadata,omitempty"`
}

// Release frees the view's blob, if any.
func (v *View) Release() {
	if v != nil {
		v.Blob.Release()
	}
}

// 📥 Load fetches and decodes one file. Metadata is requested alongside the
// content and attached if it arrives within grace of the content finishing.
func Load(ctx context.Context, f remote.Fetcher, cfg config.RepositoryConfig, p string, grace time.Duration) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p = strings.Trim(p, "/")
	logger := zerolog.Ctx(ctx).With().Str("path", p).Logger()

	metaCtx, cancelMeta := context.WithCancel(ctx)
	defer cancelMeta()

	metaCh := make(chan *remote.FileMetadata, 1)
	go func() {
		metaCh <- f.FetchFileMetadata(metaCtx, cfg, p)
	}()

	kind := Classify(p)
	view := &View{
		Path:      p,
		Kind:      kind,
		Title:     Title(p),
		SourceURL: cfg.BlobURL(path.Join(cfg.CleanSubPath(), p)),
	}

	if err := loadBody(ctx, f, cfg, view); err != nil {
		return nil, err
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case view.Metadata = <-metaCh:
	case <-timer.C:
		logger.Debug().Dur("grace", grace).Msg("metadata not ready, rendering without it")
	case <-ctx.Done():
		view.Release()
		return nil, errors.WithStack(ctx.Err())
	}

	return view, nil
}

func loadBody(ctx context.Context, f remote.Fetcher, cfg config.RepositoryConfig, view *View) error {
	switch view.Kind {
	case KindImage, KindPDF:
		data, err := f.FetchFileBlob(ctx, cfg, view.Path)
		if err != nil {
			return err
		}
		view.Blob = NewBlob(data, MIMEType(view.Path))
		return nil

	case KindMarkdown:
		text, err := f.FetchFileContent(ctx, cfg, view.Path)
		if err != nil {
			return err
		}
		view.Text = text
		view.Headings = Headings(text)
		return nil

	case KindNotebook:
		raw, err := f.FetchFileContent(ctx, cfg, view.Path)
		if err != nil {
			return err
		}
		text, err := DecodeNotebook([]byte(raw))
		if err != nil {
			return errors.Errorf("decoding %s: %w", view.Path, err)
		}
		view.Text = text
		view.Headings = Headings(text)
		return nil

	case KindCode:
		text, err := f.FetchFileContent(ctx, cfg, view.Path)
		if err != nil {
			return err
		}
		view.Text = Fence(Extension(view.Path), text)
		return nil
	}

	return errors.Errorf("unhandled content kind %d", view.Kind)
}

// State is where a Resolver is in loading its current selection.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// 🧭 Resolver tracks one selected file at a time.
//
// Every Select bumps a generation counter. A load that finishes after a
// newer Select is discarded, its blob released, and reported as
// ErrSuperseded. The previous view's blob is released as soon as a new
// selection starts.
type Resolver struct {
	fetcher remote.Fetcher
	grace   time.Duration

	mu    sync.Mutex
	gen   uint64
	state State
	cfg   config.RepositoryConfig
	path  string
	view  *View
	err   error
}

type ResolverOption func(*Resolver)

func WithMetadataGrace(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.grace = d
	}
}

func NewResolver(f remote.Fetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{fetcher: f, grace: MetadataGrace}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Select loads p and makes it the current view.
func (r *Resolver) Select(ctx context.Context, cfg config.RepositoryConfig, p string) (*View, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.view.Release()
	r.view, r.err = nil, nil
	r.state = StateLoading
	r.cfg, r.path = cfg.Clone(), strings.Trim(p, "/")
	r.mu.Unlock()

	view, err := Load(ctx, r.fetcher, cfg, p, r.grace)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		view.Release()
		zerolog.Ctx(ctx).Debug().Str("path", p).Msg("discarding superseded load")
		return nil, errors.WithStack(ErrSuperseded)
	}

	if err != nil {
		r.state, r.err = StateFailed, err
		return nil, err
	}

	r.state, r.view = StateReady, view
	return view, nil
}

// Retry reloads the current selection.
func (r *Resolver) Retry(ctx context.Context) (*View, error) {
	r.mu.Lock()
	cfg, p, state := r.cfg, r.path, r.state
	r.mu.Unlock()

	if state == StateIdle {
		return nil, errors.New("nothing selected")
	}
	return r.Select(ctx, cfg, p)
}

// Current reports the state, the ready view and the failure, if any.
func (r *Resolver) Current() (State, *View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.view, r.err
}

// Path is the current selection.
func (r *Resolver) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Close releases the current view and returns the resolver to idle. Loads
// still in flight are discarded when they finish.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	r.view.Release()
	r.view, r.err = nil, nil
	r.state = StateIdle
	r.path = ""
}
