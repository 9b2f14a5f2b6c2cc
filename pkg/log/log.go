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
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// column layout of file lines
const (
	lineIndent  = 4
	pathWidth   = 35
	kindWidth   = 10
	detailWidth = 15
)

// 📄 FileLine is one file shown in a listing
type FileLine struct {
	Path    string // Path relative to the topic
	Kind    string // Content kind (markdown/code/notebook/image/pdf)
	Detail  string // Free text, e.g. a size or a last author
	IsDir   bool   // Whether this is a directory
	IsMatch bool   // Whether this line is a search hit
	Missing bool   // Whether the file could not be loaded
}

// 📚 TopicHeader introduces the listing of one topic
type TopicHeader struct {
	Title    string // Topic title
	Repo     string // owner/repo
	Ref      string // Branch or commit
	Location string // Topic path, e.g. /research/python
}

// 🖥️ Logger prints human friendly console output and mirrors every line to
// a zerolog logger.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *TopicHeader
	lines   int
}

// 🏭 New creates a new logger. Console output goes to console, structured
// logs to stderr.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

type consoleKey struct{}

// FromContext returns the console logger stored by NewContext. It panics
// when there is none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(consoleKey{}).(*Logger); ok {
		return l
	}
	panic("logger not found in context")
}

// 🎯 NewContext stores l in ctx, along with its zerolog logger for zerolog.Ctx
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(l.zlog.WithContext(ctx), consoleKey{}, l)
}

func (l *Logger) formatFileLine(line FileLine) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case line.Missing:
		symbol = '✗'
		symbolColor = color.FgRed
	case line.IsDir:
		symbol = '▸'
		symbolColor = color.FgBlue
	case line.IsMatch:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch line.Kind {
	case "markdown", "notebook":
		kindColor = color.FgCyan
	case "code":
		kindColor = color.FgYellow
	default:
		kindColor = color.FgMagenta
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", lineIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", pathWidth, line.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, line.Kind)),
		fmt.Sprintf("%-*s", detailWidth, line.Detail))
}

// 📝 LogFile prints one file line
func (l *Logger) LogFile(ctx context.Context, line FileLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines++
	fmt.Fprintln(l.console, l.formatFileLine(line))

	l.zlog.Debug().
		Str("file", line.Path).
		Str("kind", line.Kind).
		Bool("is_dir", line.IsDir).
		Bool("is_match", line.IsMatch).
		Bool("missing", line.Missing).
		Msg("file line")
}

// 📝 StartTopic prints a topic header and starts counting its lines
func (l *Logger) StartTopic(ctx context.Context, h TopicHeader) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &h
	l.lines = 0

	fmt.Fprintf(l.console, "[browsing %s]\n",
		color.New(color.FgCyan).Sprint(h.Location))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(h.Title),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(h.Repo+"@"+h.Ref))

	l.zlog.Debug().
		Str("topic", h.Title).
		Str("repo", h.Repo).
		Str("ref", h.Ref).
		Str("location", h.Location).
		Msg("starting topic listing")
}

// 📝 EndTopic closes the current topic listing
func (l *Logger) EndTopic(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Debug().
		Str("topic", l.current.Title).
		Int("lines", l.lines).
		Msg("topic listing complete")

	l.current = nil
	l.lines = 0
}

// 📝 LogNewline prints an empty line
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header prints the tool name and msg as a section title
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("research")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Msg(msg)
}

// tone is how one class of message looks on the console and in the log.
type tone struct {
	prefix string
	attr   color.Attribute
	level  zerolog.Level
}

var (
	toneInfo    = tone{prefix: "ℹ️  ", attr: color.FgCyan, level: zerolog.InfoLevel}
	toneSuccess = tone{prefix: "✅ ", attr: color.FgGreen, level: zerolog.InfoLevel}
	toneWarning = tone{prefix: "⚠️  ", attr: color.FgYellow, level: zerolog.WarnLevel}
	toneError   = tone{prefix: "❌ ", attr: color.FgRed, level: zerolog.ErrorLevel}
)

func (l *Logger) say(t tone, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, t.prefix+color.New(t.attr).Sprint(msg))
	l.zlog.WithLevel(t.level).Msg(msg)
}

func (l *Logger) Info(msg string)    { l.say(toneInfo, msg) }
func (l *Logger) Success(msg string) { l.say(toneSuccess, msg) }
func (l *Logger) Warning(msg string) { l.say(toneWarning, msg) }
func (l *Logger) Error(msg string)   { l.say(toneError, msg) }

func (l *Logger) Infof(format string, args ...any) {
	l.say(toneInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...any) {
	l.say(toneSuccess, fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...any) {
	l.say(toneWarning, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.say(toneError, fmt.Sprintf(format, args...))
}
