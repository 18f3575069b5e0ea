// Copyright 2026 walteh LLC
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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(data []byte) (*Config, error)

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

// 📚 Config represents the complete patch configuration
type Config struct {
	Root         string   `json:"root" yaml:"root" hcl:"root,optional"`                            // Project root to scan
	Translations string   `json:"translations" yaml:"translations" hcl:"translations,optional"`    // Translated JSONL path
	Output       string   `json:"output" yaml:"output" hcl:"output,optional"`                      // Mirror output root
	Report       string   `json:"report,omitempty" yaml:"report,omitempty" hcl:"report,optional"`  // TSV report path (default: beside translations)
	Glob         string   `json:"glob,omitempty" yaml:"glob,omitempty" hcl:"glob,optional"`        // Glob for files to include
	ExcludeDirs  []string `json:"exclude_dirs,omitempty" yaml:"exclude_dirs,omitempty" hcl:"exclude_dirs,optional"` // Dir names to skip
	Suffix       string   `json:"suffix,omitempty" yaml:"suffix,omitempty" hcl:"suffix,optional"`  // Output file suffix
	DryRun       bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
	Backup       bool     `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	Workers      int      `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"` // Parallel files; 0 means sequential
}

// 🎯 Load loads and validates the configuration from a file
func Load(logger *zerolog.Logger, path string) (*Config, error) {
	cfg, err := ParseFile(logger, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// 📖 ParseFile loads the configuration without validating, so callers can
// merge in CLI arguments before Validate applies defaults
func ParseFile(logger *zerolog.Logger, path string) (*Config, error) {
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// 🔍 Validate checks required fields and applies defaults
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		return errors.Errorf("root is required")
	}
	if cfg.Translations == "" {
		return errors.Errorf("translations is required")
	}

	// Clean up paths
	cfg.Root = filepath.Clean(cfg.Root)
	cfg.Translations = filepath.Clean(cfg.Translations)

	// Set defaults
	if cfg.Output == "" {
		cfg.Output = "out_patch"
	}
	if cfg.Glob == "" {
		cfg.Glob = "**/*.rpy"
	}
	if cfg.ExcludeDirs == nil {
		cfg.ExcludeDirs = []string{"tl"}
	}
	if cfg.Suffix == "" {
		cfg.Suffix = ".zh.rpy"
	}
	if cfg.Report == "" {
		cfg.Report = strings.TrimSuffix(cfg.Translations, filepath.Ext(cfg.Translations)) + ".patch_report.tsv"
	}
	if cfg.Workers < 0 {
		return errors.Errorf("workers must be >= 0")
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s + %s -> %s", cfg.Root, cfg.Translations, cfg.Output)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
