// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aggregate

import (
	"fmt"
	"sort"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
)

// Study-tip thresholds.
const (
	tipAttendanceBelow = 50.0
	tipScoreFoundation = 60.0
	tipScoreReview     = 80.0
)

// StudyTips combines a student's attendance percentage with their most
// recent performance score into one or two recommendations.
//
// The attendance tip is additive: it appears whenever attendance is
// below 50%. Exactly one score tip is always produced; the three score
// bands are mutually exclusive and cover the whole range.
func StudyTips(attendancePercent float64, score float64) []string {
	var tips []string
	if attendancePercent < tipAttendanceBelow {
		tips = append(tips, "Encourage regular attendance and provide catch-up resources.")
	}
	switch {
	case score < tipScoreFoundation:
		tips = append(tips, "Focus on foundational concepts and offer extra practice problems.")
	case score < tipScoreReview:
		tips = append(tips, "Review challenging topics and provide advanced exercises.")
	default:
		tips = append(tips, "Maintain momentum with challenging projects and peer discussions.")
	}
	return tips
}

// PrioritizeLimit caps the prioritized task list.
const PrioritizeLimit = 5

// NothingToPrioritize is the sentinel when there are neither pending
// tasks nor scheduled activities.
const NothingToPrioritize = "You have no tasks or activities to prioritize today. Enjoy a relaxed day!"

// Prioritize sorts pending tasks with a three-key comparator (tasks
// without a deadline last, then ascending deadline, then high priority
// before normal), numbers the first five, and appends a note about
// today's scheduled activities when there are any. It returns the
// rendered lines, or nil when the sentinel applies.
func Prioritize(tasks []datatypes.Task, activityCount int) []string {
	var pending []datatypes.Task
	for _, t := range tasks {
		if t.IsPending() {
			pending = append(pending, t)
		}
	}

	if len(pending) == 0 && activityCount == 0 {
		return nil
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.HasDeadline() != b.HasDeadline() {
			return a.HasDeadline()
		}
		if a.Deadline != b.Deadline {
			return a.Deadline < b.Deadline
		}
		return a.HighPriority && !b.HighPriority
	})
	if len(pending) > PrioritizeLimit {
		pending = pending[:PrioritizeLimit]
	}

	var lines []string
	for i, t := range pending {
		priority := "Normal Priority"
		if t.HighPriority {
			priority = "High Priority"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (Deadline: %s, %s)", i+1, t.Name, t.DeadlineLabel(), priority))
	}
	if activityCount > 0 {
		lines = append(lines, fmt.Sprintf("Also focus on your %d scheduled activities today.", activityCount))
	}
	return lines
}
