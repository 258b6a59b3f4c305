// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values that end up
// in storage keys or user-facing output. Identities become BadgerDB key
// fragments, so they are restricted to a conservative character set.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// identityPattern matches conversation identity keys.
// Allows: letters, digits, underscores, hyphens, dots. Max 128 chars.
var identityPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,127}$`)

// clockPattern matches 24h clock labels such as "09:00" or "14:30".
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateIdentity checks a conversation identity key.
//
// Identities address per-user history records and are embedded directly
// in storage keys, so anything outside the safe character set is
// rejected rather than escaped.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if !identityPattern.MatchString(identity) {
		return fmt.Errorf("invalid identity: %q (must be 1-128 alphanumeric chars, dots, underscores, or hyphens)", identity)
	}
	return nil
}

// SanitizeIdentity trims and validates an identity key.
func SanitizeIdentity(identity string) (string, error) {
	trimmed := strings.TrimSpace(identity)
	if err := ValidateIdentity(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateISODate checks a calendar date in YYYY-MM-DD form. ISO dates
// compare correctly as plain strings, which deadline windowing and
// attendance keys rely on.
func ValidateISODate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date: %q (must be YYYY-MM-DD)", date)
	}
	return nil
}

// ValidateClockTime checks a 24h clock label such as "10:00".
func ValidateClockTime(clock string) error {
	if clock == "" {
		return fmt.Errorf("time cannot be empty")
	}
	if !clockPattern.MatchString(clock) {
		return fmt.Errorf("invalid time: %q (must be HH:MM, 24h)", clock)
	}
	return nil
}
