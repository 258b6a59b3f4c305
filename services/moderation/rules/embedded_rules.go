// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules embeds the moderation denylist into the binary so the
// rule set is immutable at runtime and travels with the executable.
package rules

import (
	_ "embed"
)

// RudeWordPatterns holds the raw bytes of rude_words.yaml, populated at
// compile time. Pass them directly to yaml.Unmarshal.
//
//go:embed rude_words.yaml
var RudeWordPatterns []byte
