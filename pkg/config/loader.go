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
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser decodes a topics file of one format
type Parser interface {
	// 📝 Parse parses topics from bytes
	Parse(ctx context.Context, data []byte, filename string) ([]Topic, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// LoadTopics loads a topics file from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
//
// An empty path returns DefaultTopics.
func LoadTopics(ctx context.Context, path string) ([]Topic, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		logger.Debug().Msg("no topics file given, using built-in topics")
		return DefaultTopics(), nil
	}

	logger.Debug().Str("path", path).Msg("loading topics")

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Errorf("reading topics file: %w", err)
	}

	p := GetParser(strings.ToLower(path))
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	topics, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, err
	}

	if err := ValidateTopics(topics); err != nil {
		return nil, errors.Errorf("validating topics: %w", err)
	}

	return topics, nil
}
