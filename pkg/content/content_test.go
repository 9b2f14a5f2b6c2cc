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

package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/research/pkg/remote"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{path: "a/plot.PNG", want: KindImage},
		{path: "photo.jpeg", want: KindImage},
		{path: "diagram.svg", want: KindImage},
		{path: "notes/readme.md", want: KindMarkdown},
		{path: "todo.txt", want: KindMarkdown},
		{path: "analysis.ipynb", want: KindNotebook},
		{path: "paper.pdf", want: KindPDF},
		{path: "main.py", want: KindCode},
		{path: "Makefile", want: KindCode},
		{path: "archive.tar.gz", want: KindCode},
	}

	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.path, "/", "_"), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path), "kind for %s", tt.path)
		})
	}
}

func TestMIMEAndTitle(t *testing.T) {
	assert.Equal(t, "image/svg+xml", MIMEType("x.svg"), "svg mime")
	assert.Equal(t, "image/jpeg", MIMEType("x.JPG"), "jpg maps to jpeg")
	assert.Equal(t, "image/webp", MIMEType("x.webp"), "other images use the extension")
	assert.Equal(t, "application/pdf", MIMEType("x.pdf"), "pdf mime")
	assert.Empty(t, MIMEType("x.md"), "text kinds have no mime")

	assert.Equal(t, "Intro", Title("notes/Intro.md"), "md suffix stripped")
	assert.Equal(t, "svm", Title("svm.ipynb"), "ipynb suffix stripped")
	assert.Equal(t, "main.py", Title("src/main.py"), "other suffixes kept")
}

func TestDecodeNotebook(t *testing.T) {
	t.Run("markdown_then_code", func(t *testing.T) {
		nb := `{"cells":[
			{"cell_type":"markdown","source":["# Title"]},
			{"cell_type":"code","source":["print(1)"],"outputs":[]}
		],"metadata":{}}`

		got, err := DecodeNotebook([]byte(nb))
		require.NoError(t, err, "notebook should decode")
		assert.Equal(t, "# Title\n\n```python\nprint(1)\n```", got, "cells should be flattened in order")
	})

	t.Run("string_source_and_kernel_language", func(t *testing.T) {
		nb := `{"cells":[
			{"cell_type":"code","source":"x <- 1\n"},
			{"cell_type":"raw","source":"ignored"},
			{"cell_type":"markdown","source":"done"}
		],"metadata":{"kernelspec":{"language":"R"}}}`

		got, err := DecodeNotebook([]byte(nb))
		require.NoError(t, err, "notebook should decode")
		assert.Equal(t, "```r\nx <- 1\n```\n\ndone", got, "language should come from the kernel spec")
	})

	t.Run("language_info_fallback", func(t *testing.T) {
		nb := `{"cells":[{"cell_type":"code","source":["1+1"]}],"metadata":{"language_info":{"name":"julia"}}}`

		got, err := DecodeNotebook([]byte(nb))
		require.NoError(t, err, "notebook should decode")
		assert.True(t, strings.HasPrefix(got, "```julia\n"), "language_info should be used")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeNotebook([]byte(`{"cells": [`))
		assert.ErrorIs(t, err, remote.ErrDecodeFailed, "broken json should fail to decode")

		_, err = DecodeNotebook([]byte(`{"nbformat": 4}`))
		assert.ErrorIs(t, err, remote.ErrDecodeFailed, "a notebook needs cells")
	})
}

func TestFence(t *testing.T) {
	assert.Equal(t, "```go\nx := 1\n```", Fence("go", "x := 1"), "plain fence")
	assert.Equal(t, "````md\n```js\n```\n````", Fence("md", "```js\n```"), "fence should outgrow inner backticks")
}

func TestHeadings(t *testing.T) {
	doc := strings.Join([]string{
		"# Top",
		"",
		"## Getting Started!",
		"",
		"text",
		"",
		"### Sub `code` *part*",
		"",
		"#### Deep",
		"",
		"##### Too deep",
		"",
		"```",
		"## not a heading",
		"```",
	}, "\n")

	got := Headings(doc)
	assert.Equal(t, []Heading{
		{Level: 2, Text: "Getting Started!", ID: "getting-started"},
		{Level: 3, Text: "Sub code part", ID: "sub-code-part"},
		{Level: 4, Text: "Deep", ID: "deep"},
	}, got, "levels 2 to 4 should be listed with slugs")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "what-is-an-svm", Slug("What is an SVM?"), "punctuation dropped")
	assert.Equal(t, "a-b_c", Slug("A  b_c"), "whitespace runs collapse")
	assert.Equal(t, "pre-trained", Slug("Pre-trained"), "hyphens kept")
}

func TestBlobRelease(t *testing.T) {
	b := NewBlob([]byte("abc"), "image/png")
	assert.Equal(t, []byte("abc"), b.Bytes(), "bytes before release")

	b.Release()
	b.Release()

	assert.True(t, b.Released(), "blob should be released")
	assert.Nil(t, b.Bytes(), "bytes dropped after release")
	assert.Equal(t, 3, b.Size(), "size survives release")

	var nilBlob *Blob
	assert.NotPanics(t, nilBlob.Release, "releasing nil is a no-op")
}
