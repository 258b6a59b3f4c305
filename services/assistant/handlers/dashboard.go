// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk/services/assistant/engine"
)

// GetDashboard returns the derived dashboard counters and the list of
// students below the attendance threshold.
func GetDashboard(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := eng.Dashboard(c.Request.Context())
		if err != nil {
			slog.Error("Failed to build dashboard stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
			return
		}

		alerts := make([]gin.H, 0, len(stats.AttendanceAlerts))
		for _, a := range stats.AttendanceAlerts {
			alerts = append(alerts, gin.H{
				"student_id": a.StudentID,
				"name":       a.Name,
				"percentage": a.Percent,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"activities":         stats.Activities,
			"pending_tasks":      stats.PendingTasks,
			"attendance_alerts":  alerts,
			"upcoming_deadlines": stats.UpcomingDeadlines,
			"schedule":           stats.ScheduleText,
		})
	}
}
