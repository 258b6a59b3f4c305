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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// PutAttendanceRequest replaces a whole class-day sheet.
type PutAttendanceRequest struct {
	Date    string                  `json:"date" binding:"required"`
	Class   string                  `json:"class" binding:"required"`
	Present datatypes.AttendanceDay `json:"present" binding:"required"`
}

// MarkAttendanceRequest flips one student's flag on a class-day sheet.
type MarkAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Class     string `json:"class" binding:"required"`
	Date      string `json:"date"`
	Present   bool   `json:"present"`
}

// GetAttendance returns one class-day sheet (?date=&class=) or, when
// both parameters are absent, every stored sheet.
func GetAttendance(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		class := c.Query("class")
		if date == "" && class == "" {
			records, err := st.AttendanceRecords(c.Request.Context())
			if err != nil {
				slog.Error("Failed to list attendance records", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list attendance"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"records": records})
			return
		}
		if date == "" || class == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date and class must be provided together"})
			return
		}
		day, err := st.AttendanceDay(c.Request.Context(), date, class)
		if err != nil {
			slog.Error("Failed to load the attendance sheet", "date", date, "class", class, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attendance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": date, "class": class, "present": day})
	}
}

// PutAttendance replaces a whole class-day sheet.
func PutAttendance(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PutAttendanceRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !datatypes.IsValidClass(req.Class) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown class", "classes": datatypes.Classes})
			return
		}
		if err := st.SaveAttendanceDay(c.Request.Context(), req.Date, req.Class, req.Present); err != nil {
			slog.Error("Failed to save the attendance sheet", "date", req.Date, "class", req.Class, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save attendance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// MarkAttendance performs the transactional single-student mark. Date
// defaults to today.
func MarkAttendance(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MarkAttendanceRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !datatypes.IsValidClass(req.Class) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown class", "classes": datatypes.Classes})
			return
		}
		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		if err := st.MarkAttendance(c.Request.Context(), req.StudentID, req.Class, date, req.Present); err != nil {
			slog.Error("Failed to mark attendance", "student_id", req.StudentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark attendance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "date": date})
	}
}
