// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package moderation screens user input against a small embedded
// denylist before it reaches the generative model.
package moderation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/classdesk/classdesk/services/moderation/rules"
)

// Engine holds the compiled denylist and answers scan queries.
type Engine struct {
	Categories []Category
}

// NewEngine loads the rule set embedded in the binary, compiles every
// regex, and sorts categories by priority. Returns an error if the
// embedded YAML is malformed or contains an invalid regex.
func NewEngine() (*Engine, error) {
	var ruleFile RuleFile
	if err := yaml.Unmarshal(rules.RudeWordPatterns, &ruleFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded moderation rules: %w", err)
	}
	if err := ruleFile.CompileRegexes(); err != nil {
		return nil, fmt.Errorf("failed to compile a moderation regex: %w", err)
	}
	ruleFile.SortByPriority()
	return &Engine{Categories: ruleFile.Categories}, nil
}

// Flag is the fast boolean check: does the content hit any denylist
// pattern? Matching is case-insensitive.
func (e *Engine) Flag(content string) bool {
	lower := strings.ToLower(content)
	for _, cat := range e.Categories {
		for _, re := range cat.CompiledPatterns {
			if re.MatchString(lower) {
				return true
			}
		}
	}
	return false
}

// Scan returns every denylist hit in the content with the pattern that
// produced it, for audit logging.
func (e *Engine) Scan(content string) []Finding {
	lower := strings.ToLower(content)
	var findings []Finding
	for _, cat := range e.Categories {
		for _, pattern := range cat.Patterns {
			match := pattern.compiledPattern.FindString(lower)
			if match != "" {
				findings = append(findings, Finding{
					MatchedContent: strings.TrimSpace(match),
					CategoryName:   cat.Name,
					PatternId:      pattern.Id,
					Confidence:     pattern.Confidence,
				})
			}
		}
	}
	return findings
}
