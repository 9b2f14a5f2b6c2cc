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
	"path"
	"strings"
)

// 🏷️ Kind decides how a file is fetched and displayed
type Kind int

const (
	KindCode Kind = iota
	KindMarkdown
	KindNotebook
	KindImage
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindMarkdown:
		return "markdown"
	case KindNotebook:
		return "notebook"
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	}
	return "unknown"
}

// IsBinary reports whether the kind is fetched as a blob.
func (k Kind) IsBinary() bool {
	switch k {
	case KindImage, KindPDF:
		return true
	case KindCode, KindMarkdown, KindNotebook:
		return false
	}
	return false
}

// MarshalText lets Kind appear as a string in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Extension is the lowercased text after the last dot of the file name, or
// the whole lowercased name when it has no dot.
func Extension(p string) string {
	name := strings.ToLower(path.Base(p))
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// 🔍 Classify maps a path to its Kind by extension. Anything unrecognized is code.
func Classify(p string) Kind {
	switch Extension(p) {
	case "png", "jpg", "jpeg", "gif", "svg", "webp":
		return KindImage
	case "md", "txt":
		return KindMarkdown
	case "ipynb":
		return KindNotebook
	case "pdf":
		return KindPDF
	}
	return KindCode
}

// MIMEType is the content type for binary kinds and empty otherwise.
func MIMEType(p string) string {
	switch Classify(p) {
	case KindImage:
		switch ext := Extension(p); ext {
		case "svg":
			return "image/svg+xml"
		case "jpg":
			return "image/jpeg"
		default:
			return "image/" + ext
		}
	case KindPDF:
		return "application/pdf"
	case KindCode, KindMarkdown, KindNotebook:
		return ""
	}
	return ""
}

// Title is the file name without a .md, .ipynb or .txt suffix.
func Title(p string) string {
	name := path.Base(p)
	for _, suffix := range []string{".md", ".ipynb", ".txt"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
