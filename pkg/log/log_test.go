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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFile(context.Background(), FileLine{
					Path:    "basics/lists.md",
					Kind:    "markdown",
					Detail:  "1.2 KB",
					IsMatch: true,
				})
			},
			wantLogs: []string{
				"✓ basics/lists.md                     markdown   1.2 KB",
			},
		},
		{
			name: "topic_header",
			op: func(t *testing.T, logger *Logger) {
				logger.StartTopic(context.Background(), TopicHeader{
					Title:    "Python Basics",
					Repo:     "acme/docs",
					Ref:      "main",
					Location: "/research/python",
				})
			},
			wantLogs: []string{
				"[browsing /research/python]",
				"◆ Python Basics • acme/docs@main",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("search results")
			},
			wantLogs: []string{
				"research • search results",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.WarnLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")
	assert.Equal(t, zerolog.WarnLevel, zerolog.Ctx(ctx).GetLevel(), "zerolog logger is carried too")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestFileLineFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		line FileLine
		want string
	}{
		{
			name: "directory",
			line: FileLine{Path: "basics", IsDir: true},
			want: "▸ basics",
		},
		{
			name: "plain_code_file",
			line: FileLine{Path: "main.py", Kind: "code"},
			want: "• main.py                             code",
		},
		{
			name: "missing_file",
			line: FileLine{Path: "gone.md", Kind: "markdown", Detail: "not found", Missing: true},
			want: "✗ gone.md                             markdown   not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			logger.LogFile(context.Background(), tt.line)

			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()), "formatted output should match")
		})
	}
}

func TestEndTopicResets(t *testing.T) {
	logger := New(io.Discard, zerolog.Disabled)
	ctx := context.Background()

	logger.EndTopic(ctx)
	logger.StartTopic(ctx, TopicHeader{Title: "t", Repo: "a/b", Ref: "main", Location: "/t"})
	logger.LogFile(ctx, FileLine{Path: "a.md", Kind: "markdown"})
	assert.Equal(t, 1, logger.lines, "lines counted")

	logger.EndTopic(ctx)
	assert.Nil(t, logger.current, "topic cleared")
	assert.Zero(t, logger.lines, "counter reset")
}
