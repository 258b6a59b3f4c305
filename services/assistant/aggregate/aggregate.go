// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package aggregate computes derived facts from raw entity collections:
// schedule summaries, deadline windows, attendance percentages, workload
// stress, time estimates, break suggestions, study tips, and task
// prioritization.
//
// Every function here is a pure function of the supplied collections
// plus an explicit "today". Nothing reads storage and nothing errors on
// absent or malformed optional data: missing fields degrade to
// documented defaults. The package is safe to call concurrently.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
)

// DeadlineWindowDays is the default upcoming-deadline window.
const DeadlineWindowDays = 7

// ScheduleSummary renders "time: activity" lines for non-empty slots in
// canonical slot order and returns the non-empty slot count.
func ScheduleSummary(sched datatypes.Schedule) (lines []string, count int) {
	for _, slot := range datatypes.CanonicalSlots {
		if act := sched[slot]; trimmed(act) != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", slot, sched[slot]))
			count++
		}
	}
	return lines, count
}

// NoActivitiesMessage is the sentinel for an empty schedule.
const NoActivitiesMessage = "No activities scheduled today."

// ScheduleText joins the schedule summary lines, or returns the
// no-activities sentinel.
func ScheduleText(sched datatypes.Schedule) string {
	lines, _ := ScheduleSummary(sched)
	if len(lines) == 0 {
		return NoActivitiesMessage
	}
	return joinLines(lines)
}

// PendingTasks renders each pending task as "name - Deadline: X",
// ordered by deadline ascending with deadline-less tasks last.
func PendingTasks(tasks []datatypes.Task) []string {
	var pending []datatypes.Task
	for _, t := range tasks {
		if t.IsPending() {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.HasDeadline() != b.HasDeadline() {
			return a.HasDeadline()
		}
		return a.Deadline < b.Deadline
	})
	var out []string
	for _, t := range pending {
		out = append(out, fmt.Sprintf("%s - Deadline: %s", t.Name, t.DeadlineLabel()))
	}
	return out
}

// PendingCount counts pending tasks.
func PendingCount(tasks []datatypes.Task) int {
	n := 0
	for _, t := range tasks {
		if t.IsPending() {
			n++
		}
	}
	return n
}

// UpcomingDeadlines returns tasks whose deadline lies in
// [today, today+windowDays], inclusive, compared as ISO date strings,
// sorted by deadline ascending. Tasks without a deadline never qualify.
func UpcomingDeadlines(tasks []datatypes.Task, today string, windowDays int) []datatypes.Task {
	future := addDays(today, windowDays)
	var out []datatypes.Task
	for _, t := range tasks {
		if t.HasDeadline() && today <= t.Deadline && t.Deadline <= future {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline < out[j].Deadline
	})
	return out
}

// OverdueTasks returns pending tasks with a deadline before today,
// ordered by deadline descending (most recently missed first).
func OverdueTasks(tasks []datatypes.Task, today string) []datatypes.Task {
	var out []datatypes.Task
	for _, t := range tasks {
		if t.IsPending() && t.HasDeadline() && t.Deadline < today {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline > out[j].Deadline
	})
	return out
}

// AttendancePercentage computes a student's attendance over every
// historical sheet for their class. total==0 means no records exist for
// the class; callers must treat that as an explicit no-data case rather
// than 0% attendance.
func AttendancePercentage(records map[string]datatypes.AttendanceDay, studentID, class string) (percent float64, total int) {
	present := 0
	for key, day := range records {
		if !datatypes.KeyMatchesClass(key, class) {
			continue
		}
		total++
		if day[studentID] {
			present++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(present) / float64(total) * 100, total
}

// Alert flags a student below the attendance threshold.
type Alert struct {
	StudentID string
	Name      string
	Percent   float64
}

// DefaultAlertThreshold is the attendance percentage below which a
// student is flagged.
const DefaultAlertThreshold = 50.0

// AttendanceAlerts returns every student whose attendance percentage is
// below threshold. Students whose class has no records are skipped, not
// flagged.
func AttendanceAlerts(students []datatypes.Student, records map[string]datatypes.AttendanceDay, threshold float64) []Alert {
	var alerts []Alert
	for _, s := range students {
		if s.Class == "" {
			continue
		}
		percent, total := AttendancePercentage(records, s.ID, s.Class)
		if total == 0 {
			continue
		}
		if percent < threshold {
			alerts = append(alerts, Alert{StudentID: s.ID, Name: s.Name, Percent: percent})
		}
	}
	return alerts
}

// StressLevel classifies the day's workload.
type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressModerate StressLevel = "moderate"
	StressHigh     StressLevel = "high"
)

// WorkloadStress derives the stress level from today's activity count,
// the pending task count, and the upcoming-deadline count.
//
// The two threshold tuples are evaluated sequentially: moderate first,
// then high overrides when any high threshold is also exceeded. A count
// set satisfying only the moderate tuple always reports moderate; this
// ordering is intentional and load-bearing.
func WorkloadStress(activities, pending, upcoming int) StressLevel {
	level := StressLow
	if activities > 5 || pending > 10 || upcoming > 5 {
		level = StressModerate
	}
	if activities > 8 || pending > 15 || upcoming > 10 {
		level = StressHigh
	}
	return level
}

// Per-task duration estimates in minutes.
const (
	minutesLow    = 15
	minutesMedium = 30
	minutesHigh   = 60
)

// EstimateTotalTime sums per-task durations over pending tasks
// (low=15m, medium=30m, high=60m, missing complexity counts as medium)
// and splits the total into hours and minutes.
func EstimateTotalTime(tasks []datatypes.Task) (hours, minutes int) {
	totalMinutes := 0
	for _, t := range tasks {
		if !t.IsPending() {
			continue
		}
		switch t.EffectiveComplexity() {
		case datatypes.ComplexityLow:
			totalMinutes += minutesLow
		case datatypes.ComplexityHigh:
			totalMinutes += minutesHigh
		default:
			totalMinutes += minutesMedium
		}
	}
	return totalMinutes / 60, totalMinutes % 60
}

// UpcomingTests returns tests dated today or later, soonest first,
// capped at limit (0 means no cap).
func UpcomingTests(tests []datatypes.TestEntry, today string, limit int) []datatypes.TestEntry {
	var out []datatypes.TestEntry
	for _, t := range tests {
		if t.Date >= today {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
