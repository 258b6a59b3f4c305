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
	"github.com/google/uuid"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// CreateStudentRequest is the body of POST /v1/students.
type CreateStudentRequest struct {
	Name  string `json:"name" binding:"required"`
	Class string `json:"class" binding:"required"`
}

// PutPerformanceRequest is the body of POST /v1/students/:id/performance.
type PutPerformanceRequest struct {
	AverageScore float64 `json:"average_score" binding:"min=0,max=100"`
}

// ListStudents returns all enrolled students.
func ListStudents(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		students, err := st.Students(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list students", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list students"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
	}
}

// CreateStudent enrolls a student into one of the enumerated classes.
func CreateStudent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateStudentRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !datatypes.IsValidClass(req.Class) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown class", "classes": datatypes.Classes})
			return
		}

		student := datatypes.Student{
			ID:    uuid.NewString(),
			Name:  req.Name,
			Class: req.Class,
		}
		if err := st.PutStudent(c.Request.Context(), student); err != nil {
			slog.Error("Failed to store the student", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the student"})
			return
		}
		slog.Info("Enrolled student", "student_id", student.ID, "class", student.Class)
		c.JSON(http.StatusCreated, student)
	}
}

// PutPerformance records a student's latest average score, which feeds
// study-tip generation.
func PutPerformance(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var req PutPerformanceRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "average_score must be between 0 and 100"})
			return
		}
		score := datatypes.PerformanceScore{
			StudentID:    id,
			AverageScore: req.AverageScore,
			Timestamp:    time.Now().UnixMilli(),
		}
		if err := st.PutPerformanceScore(c.Request.Context(), score); err != nil {
			slog.Error("Failed to store the performance score", "student_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the score"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "student_id": id})
	}
}
