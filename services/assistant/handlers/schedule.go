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

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// GetScheduleToday returns today's schedule over the canonical slots.
func GetScheduleToday(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched, err := st.ScheduleToday(c.Request.Context())
		if err != nil {
			slog.Error("Failed to load today's schedule", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the schedule"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"schedule": sched, "slots": datatypes.CanonicalSlots})
	}
}

// PutScheduleToday replaces today's schedule. Unknown slot keys are
// dropped by normalization.
func PutScheduleToday(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sched datatypes.Schedule
		if err := c.BindJSON(&sched); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		normalized := sched.Normalize()
		if err := st.SaveScheduleToday(c.Request.Context(), normalized); err != nil {
			slog.Error("Failed to save today's schedule", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save the schedule"})
			return
		}
		slog.Info("Saved today's schedule")
		c.JSON(http.StatusOK, gin.H{"schedule": normalized})
	}
}
