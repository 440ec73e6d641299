// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/edgefilter/edgefilter/edge/exec"
)

// hclFile is the top-level structure of a run file:
//
//	filter_size        = 5
//	neighborhood_width = 3
//	cutoff             = 1000
//	workers            = 8
//	log_level          = "debug"
//
//	filter "prewitt" {
//	  strategies = ["serial", "forkjoin"]
//	}
type hclFile struct {
	FilterSize        *int         `hcl:"filter_size,optional"`
	NeighborhoodWidth *int         `hcl:"neighborhood_width,optional"`
	Cutoff            *int         `hcl:"cutoff,optional"`
	Workers           *int         `hcl:"workers,optional"`
	LogLevel          *string      `hcl:"log_level,optional"`
	LogFormat         *string      `hcl:"log_format,optional"`
	Filters           []*hclFilter `hcl:"filter,block"`
}

type hclFilter struct {
	Name       string   `hcl:"name,label"`
	Strategies []string `hcl:"strategies"`
}

// LoadFile applies the settings in the HCL file at path on top of base.
// Attributes the file leaves out keep their base values; a filter block
// replaces that filter's strategy list. When the file has at least one
// filter block, filters without a block are not run.
func LoadFile(path string, base Options) (Options, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return base, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(f.Body, path, base)
}

// Parse is LoadFile for in-memory source; filename is used in diagnostics.
func Parse(src []byte, filename string, base Options) (Options, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return base, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	return decode(f.Body, filename, base)
}

func decode(body hcl.Body, filename string, base Options) (Options, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return base, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	o := base
	setInt(&o.FilterSize, parsed.FilterSize)
	setInt(&o.NeighborhoodWidth, parsed.NeighborhoodWidth)
	setInt(&o.Cutoff, parsed.Cutoff)
	setInt(&o.Workers, parsed.Workers)
	if parsed.LogLevel != nil {
		o.LogLevel = *parsed.LogLevel
	}
	if parsed.LogFormat != nil {
		o.LogFormat = *parsed.LogFormat
	}

	if len(parsed.Filters) > 0 {
		o.Strategies = make(map[string][]exec.Strategy, len(parsed.Filters))
		for _, block := range parsed.Filters {
			if _, dup := o.Strategies[block.Name]; dup {
				return base, fmt.Errorf("%s: filter %q declared twice", filename, block.Name)
			}
			list, err := ParseStrategies(block.Strategies)
			if err != nil {
				return base, fmt.Errorf("%s: filter %q: %w", filename, block.Name, err)
			}
			o.Strategies[block.Name] = list
		}
	}
	return o, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
