// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package intent classifies free-text queries into the fixed set of
// structured assistant queries.
//
// Classification is ordered keyword matching over the lower-cased
// input: rules are evaluated in a fixed priority sequence and the first
// matching rule wins. Several patterns overlap on shared substrings
// ("attendance" appears in both the query and marking phrasings), so
// the rule order in Rules is load-bearing; reordering it changes
// routing. An input matching no rule is reported as unmatched, which is
// not an error; the caller routes it to the generative fallback.
package intent

import "strings"

// Intent identifies one recognized query category.
type Intent string

const (
	IntentSchedule        Intent = "schedule"
	IntentAttendanceQuery Intent = "attendance_query"
	IntentAttendanceMark  Intent = "attendance_mark"
	IntentTests           Intent = "tests"
	IntentStress          Intent = "workload_stress"
	IntentPendingTasks    Intent = "pending_tasks"
	IntentPrioritize      Intent = "prioritize"
	IntentDeadlines       Intent = "upcoming_deadlines"
	IntentStudyTips       Intent = "study_tips"
	IntentOverdue         Intent = "overdue_tasks"
	IntentTimeEstimate    Intent = "time_estimate"
	IntentBreaks          Intent = "break_suggestion"
)

// Match is the result of classifying an input.
type Match struct {
	Intent Intent

	// Student is the extracted student name for name-bearing intents
	// (attendance query/mark, study tips). May be empty when the
	// phrasing matched but no name could be sliced out.
	Student string

	// MarkPresent distinguishes "mark ... present" from "mark ...
	// absent".
	MarkPresent bool

	// ListOut is set on the schedule intent when the user asked to
	// "list it out".
	ListOut bool
}

// Rule pairs a matching predicate with an optional argument extractor.
// Predicates and extractors operate on the lower-cased input.
type Rule struct {
	Intent  Intent
	Match   func(lower string) bool
	Extract func(lower string) Match
}

// Resolve classifies input against the ordered rule list. ok is false
// when no rule matched.
func Resolve(input string) (m Match, ok bool) {
	lower := strings.ToLower(input)
	for _, r := range Rules {
		if !r.Match(lower) {
			continue
		}
		if r.Extract != nil {
			return r.Extract(lower), true
		}
		return Match{Intent: r.Intent}, true
	}
	return Match{}, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
