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
	"github.com/google/uuid"

	"github.com/classdesk/classdesk/pkg/validation"
	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// CreateTestRequest is the body of POST /v1/tests.
type CreateTestRequest struct {
	Subject string `json:"subject" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
}

// ListTests returns all scheduled tests.
func ListTests(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tests, err := st.Tests(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list tests", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tests"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tests": tests})
	}
}

// CreateTest schedules a class test.
func CreateTest(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTestRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := validation.ValidateISODate(req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be an ISO date (YYYY-MM-DD)"})
			return
		}
		if err := validation.ValidateClockTime(req.Time); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM (24h)"})
			return
		}

		entry := datatypes.TestEntry{
			ID:      uuid.NewString(),
			Subject: req.Subject,
			Date:    req.Date,
			Time:    req.Time,
		}
		if err := st.PutTest(c.Request.Context(), entry); err != nil {
			slog.Error("Failed to store the test", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the test"})
			return
		}
		slog.Info("Scheduled test", "test_id", entry.ID, "subject", entry.Subject, "date", entry.Date)
		c.JSON(http.StatusCreated, entry)
	}
}
