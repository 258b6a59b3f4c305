// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import "strings"

// Name extraction slices the substring between anchor phrases and trims
// filler words. It is deliberately simple and inherits the phrasing's
// fragility: a student literally named after an anchor word ("Present",
// "Attendance") cannot be extracted correctly. That limitation is
// documented rather than worked around: the phrasings are fixed, and
// guessing intent boundaries inside names causes worse failures.

// fillerWords are stripped from extracted names as whole tokens.
var fillerWords = map[string]bool{"the": true}

// extractBetween returns the trimmed text between the first occurrence
// of start and the following occurrence of end.
func extractBetween(lower, start, end string) string {
	_, after, found := strings.Cut(lower, start)
	if !found {
		return ""
	}
	between, _, _ := strings.Cut(after, end)
	return cleanName(between)
}

// extractAfter returns the trimmed text following the anchor.
func extractAfter(lower, anchor string) string {
	_, after, found := strings.Cut(lower, anchor)
	if !found {
		return ""
	}
	return cleanName(after)
}

// extractMark pulls the student name and present/absent status out of a
// marking phrase like "mark the john doe present".
func extractMark(lower string) Match {
	present := strings.Contains(lower, "present")
	status := "absent"
	if present {
		status = "present"
	}
	_, after, found := strings.Cut(lower, "mark")
	if !found {
		return Match{Intent: IntentAttendanceMark, MarkPresent: present}
	}
	name, _, _ := strings.Cut(after, status)
	return Match{
		Intent:      IntentAttendanceMark,
		Student:     cleanName(name),
		MarkPresent: present,
	}
}

// cleanName trims the raw extracted fragment and drops filler tokens.
func cleanName(raw string) string {
	fields := strings.Fields(raw)
	kept := fields[:0]
	for _, f := range fields {
		if fillerWords[f] {
			continue
		}
		kept = append(kept, strings.Trim(f, ",.?!"))
	}
	return strings.Join(kept, " ")
}
