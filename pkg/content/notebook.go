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
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/research/pkg/remote"
)

const defaultNotebookLanguage = "python"

type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType string     `json:"cell_type"`
	Source   cellSource `json:"source"`
}

// cellSource accepts both forms nbformat allows: a list of lines or one string.
type cellSource string

func (s *cellSource) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*s = cellSource(strings.Join(lines, ""))
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errors.Errorf("cell source is neither a string nor a list of strings: %w", err)
	}
	*s = cellSource(text)
	return nil
}

func (n *notebook) language() string {
	if l := strings.TrimSpace(n.Metadata.KernelSpec.Language); l != "" {
		return strings.ToLower(l)
	}
	if l := strings.TrimSpace(n.Metadata.LanguageInfo.Name); l != "" {
		return strings.ToLower(l)
	}
	return defaultNotebookLanguage
}

// 📓 DecodeNotebook flattens a Jupyter notebook into markdown.
//
// Markdown cells are copied verbatim and code cells are fenced with the
// notebook language, in cell order, separated by blank lines. Other cell
// types are dropped. A notebook that does not parse is an ErrDecodeFailed.
func DecodeNotebook(data []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", errors.WithDetails(remote.ErrDecodeFailed, "format", "ipynb", "cause", err.Error())
	}
	if nb.Cells == nil {
		return "", errors.WithDetails(remote.ErrDecodeFailed, "format", "ipynb", "cause", "no cells")
	}

	lang := nb.language()
	parts := make([]string, 0, len(nb.Cells))
	for _, cell := range nb.Cells {
		src := strings.TrimRight(string(cell.Source), "\n")
		switch cell.CellType {
		case "markdown":
			parts = append(parts, src)
		case "code":
			parts = append(parts, Fence(lang, src))
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// Fence wraps src in a fenced code block tagged with lang. The fence is made
// longer than any backtick run inside src.
func Fence(lang, src string) string {
	fence := strings.Repeat("`", max(3, longestRun(src, '`')+1))
	return fence + lang + "\n" + src + "\n" + fence
}

func longestRun(s string, c byte) int {
	best, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			best = max(best, run)
			continue
		}
		run = 0
	}
	return best
}
