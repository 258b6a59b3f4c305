// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package moderation

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

type ConfidenceLevel string

const (
	Low    ConfidenceLevel = "low"
	Medium ConfidenceLevel = "medium"
	High   ConfidenceLevel = "high"
)

// RuleFile is the shape of the embedded moderation rules document.
type RuleFile struct {
	Categories []Category `yaml:"categories"`
}

// Category groups related patterns under one rejection reason.
type Category struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	Priority         int              `yaml:"priority"`
	Patterns         []Pattern        `yaml:"patterns"`
	CompiledPatterns []*regexp.Regexp `yaml:"-"`
}

// Pattern is a single denylist regex.
type Pattern struct {
	Id              string          `yaml:"id"`
	Description     string          `yaml:"description"`
	Regex           string          `yaml:"regex"`
	Confidence      ConfidenceLevel `yaml:"confidence"`
	compiledPattern *regexp.Regexp  `yaml:"-"`
}

func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incoming := ConfidenceLevel(s)
	switch incoming {
	case High, Medium, Low:
		*c = incoming
		return nil
	default:
		return fmt.Errorf("invalid value for Confidence: %q", incoming)
	}
}

// CompileRegexes compiles every pattern once at load time.
func (f *RuleFile) CompileRegexes() error {
	for i := range f.Categories {
		for j := range f.Categories[i].Patterns {
			pattern := &f.Categories[i].Patterns[j]
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile the regex %s: %w", pattern.Regex, err)
			}
			f.Categories[i].CompiledPatterns = append(f.Categories[i].CompiledPatterns, re)
			pattern.compiledPattern = re
		}
	}
	return nil
}

// SortByPriority orders categories from highest to lowest priority.
func (f *RuleFile) SortByPriority() {
	sort.Slice(f.Categories, func(i, j int) bool {
		return f.Categories[i].Priority > f.Categories[j].Priority
	})
}

// Finding records one denylist hit.
type Finding struct {
	MatchedContent string          `json:"matched_content"`
	CategoryName   string          `json:"category_name"`
	PatternId      string          `json:"pattern_id"`
	Confidence     ConfidenceLevel `json:"confidence"`
}
