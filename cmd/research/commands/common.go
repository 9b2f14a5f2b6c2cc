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

package commands

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/config"
	"github.com/walteh/research/pkg/session"
)

// global returns the saved settings, or the zero config without a store.
func global(ctx context.Context, ro *opts.RootOpts) config.RepositoryConfig {
	if ro.Store == nil {
		return config.RepositoryConfig{}
	}
	return ro.Store.Load(ctx)
}

func newSession(ctx context.Context, ro *opts.RootOpts) *session.Session {
	sopts := []session.Option{session.WithGlobal(global(ctx, ro))}
	if ro.Cache != nil {
		sopts = append(sopts, session.WithInvalidator(ro.Cache))
	}
	return session.New(ro.Fetcher, ro.Topics, sopts...)
}

// navigateTopic loads the tree of the topic covering location.
func navigateTopic(ctx context.Context, sess *session.Session, location string) (*session.Snapshot, error) {
	topic, ok := sess.MatchTopic(location)
	if !ok {
		return nil, errors.Errorf("no topic matches %q", location)
	}
	return sess.Navigate(ctx, topic.Path)
}
