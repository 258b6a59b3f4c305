// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aggregate

import (
	"fmt"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
)

// DashboardStats is the derived dashboard state. It doubles as the
// grounding context handed to the fallback model.
type DashboardStats struct {
	Activities        int     `json:"activities"`
	PendingTasks      int     `json:"pending_tasks"`
	AttendanceAlerts  []Alert `json:"-"`
	AlertCount        int     `json:"attendance_alerts"`
	UpcomingDeadlines int     `json:"upcoming_deadlines"`
	ScheduleText      string  `json:"schedule"`
}

// BuildDashboardStats computes the dashboard snapshot from the raw
// collections and today's date.
func BuildDashboardStats(
	tasks []datatypes.Task,
	sched datatypes.Schedule,
	students []datatypes.Student,
	records map[string]datatypes.AttendanceDay,
	today string,
) DashboardStats {
	_, activities := ScheduleSummary(sched)
	alerts := AttendanceAlerts(students, records, DefaultAlertThreshold)
	return DashboardStats{
		Activities:        activities,
		PendingTasks:      PendingCount(tasks),
		AttendanceAlerts:  alerts,
		AlertCount:        len(alerts),
		UpcomingDeadlines: len(UpcomingDeadlines(tasks, today, DeadlineWindowDays)),
		ScheduleText:      ScheduleText(sched),
	}
}

// ContextString renders the stats as the natural-language grounding
// passed to the fallback model.
func (s DashboardStats) ContextString() string {
	return fmt.Sprintf(
		"Teacher dashboard stats: %d activities today, %d pending tasks, "+
			"%d student alerts, %d upcoming deadlines within 7 days. "+
			"Today's schedule: %s",
		s.Activities, s.PendingTasks, s.AlertCount, s.UpcomingDeadlines, s.ScheduleText,
	)
}
