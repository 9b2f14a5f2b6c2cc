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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
//
//	topic "python" {
//	  title = "Python Basics"
//	  path  = "/research/python"
//	  repo {
//	    owner  = "acme"
//	    repo   = "notes"
//	    branch = "main"
//	  }
//	}
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) ([]Topic, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_owner":  cty.StringVal(DefaultRepoConfig.Owner),
			"default_repo":   cty.StringVal(DefaultRepoConfig.Repo),
			"default_branch": cty.StringVal(DefaultRepoConfig.Branch),
		},
	}

	// Define HCL schema
	type hclTopic struct {
		ID          string            `hcl:"id,label"`
		Title       string            `hcl:"title"`
		Path        string            `hcl:"path"`
		Description string            `hcl:"description,optional"`
		Icon        string            `hcl:"icon,optional"`
		Color       string            `hcl:"color,optional"`
		Repo        *RepositoryConfig `hcl:"repo,block"`
	}
	type hclTopics struct {
		Topics []hclTopic `hcl:"topic,block"`
	}

	var hclCfg hclTopics
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	topics := make([]Topic, 0, len(hclCfg.Topics))
	for _, t := range hclCfg.Topics {
		topic := Topic{
			ID:          t.ID,
			Title:       t.Title,
			Path:        t.Path,
			Description: t.Description,
			Icon:        t.Icon,
			Color:       t.Color,
		}
		if t.Repo != nil {
			topic.Repo = *t.Repo
		}
		topics = append(topics, topic)
	}

	return topics, nil
}
