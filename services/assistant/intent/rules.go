// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import "strings"

// Rules is the ordered rule list. First match wins; the sequence is
// fixed and documented here:
//
//	schedule → attendance-query → attendance-mark → tests → stress →
//	pending-tasks → prioritize → deadlines → study-tips → overdue →
//	time-estimate → break-suggestion
//
// Keep new rules at the end unless they genuinely must preempt an
// existing overlapping pattern.
var Rules = []Rule{
	{
		Intent: IntentSchedule,
		Match: func(lower string) bool {
			return containsAny(lower, "schedule", "today's schedule", "what is my schedule")
		},
		Extract: func(lower string) Match {
			return Match{
				Intent:  IntentSchedule,
				ListOut: strings.Contains(lower, "list it out"),
			}
		},
	},
	{
		Intent: IntentAttendanceQuery,
		Match: func(lower string) bool {
			return strings.Contains(lower, "how much is") && strings.Contains(lower, "attendance")
		},
		Extract: func(lower string) Match {
			return Match{
				Intent:  IntentAttendanceQuery,
				Student: extractBetween(lower, "how much is", "attendance"),
			}
		},
	},
	{
		Intent: IntentAttendanceMark,
		Match: func(lower string) bool {
			return strings.Contains(lower, "mark") && containsAny(lower, "present", "absent")
		},
		Extract: extractMark,
	},
	{
		Intent: IntentTests,
		Match: func(lower string) bool {
			return containsAny(lower, "do i have a test", "are there any tests")
		},
	},
	{
		Intent: IntentStress,
		Match: func(lower string) bool {
			return strings.Contains(lower, "is my work stressful today")
		},
	},
	{
		Intent: IntentPendingTasks,
		Match: func(lower string) bool {
			return containsAny(lower, "what are my pending tasks", "list my pending tasks")
		},
	},
	{
		Intent: IntentPrioritize,
		Match: func(lower string) bool {
			return strings.Contains(lower, "what should i prioritize today")
		},
	},
	{
		Intent: IntentDeadlines,
		Match: func(lower string) bool {
			return strings.Contains(lower, "what are my upcoming deadlines")
		},
	},
	{
		Intent: IntentStudyTips,
		Match: func(lower string) bool {
			return strings.Contains(lower, "what study tips for")
		},
		Extract: func(lower string) Match {
			return Match{
				Intent:  IntentStudyTips,
				Student: extractAfter(lower, "what study tips for"),
			}
		},
	},
	{
		Intent: IntentOverdue,
		Match: func(lower string) bool {
			return strings.Contains(lower, "do i have any overdue tasks")
		},
	},
	{
		Intent: IntentTimeEstimate,
		Match: func(lower string) bool {
			return strings.Contains(lower, "how much time will my tasks take today")
		},
	},
	{
		Intent: IntentBreaks,
		Match: func(lower string) bool {
			return strings.Contains(lower, "when should i take a break today")
		},
	},
}
