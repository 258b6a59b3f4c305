// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk/pkg/validation"
	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// CreateTaskRequest is the body of POST /v1/tasks.
type CreateTaskRequest struct {
	Name         string `json:"name" binding:"required"`
	Deadline     string `json:"deadline"`
	HighPriority bool   `json:"high_priority"`
	Complexity   string `json:"complexity"`
}

// SetTaskStatusRequest is the body of POST /v1/tasks/:id/status.
type SetTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed canceled"`
}

// ListTasks returns all tasks ordered by creation time.
func ListTasks(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := st.Tasks(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list tasks", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": tasks})
	}
}

// CreateTask stores a new pending task.
func CreateTask(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTaskRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Deadline != "" {
			if err := validation.ValidateISODate(req.Deadline); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be an ISO date (YYYY-MM-DD)"})
				return
			}
		}

		task := datatypes.Task{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Deadline:     req.Deadline,
			Status:       datatypes.TaskPending,
			HighPriority: req.HighPriority,
			Complexity:   datatypes.TaskComplexity(req.Complexity),
			CreatedAt:    time.Now().UTC(),
		}
		if err := st.PutTask(c.Request.Context(), task); err != nil {
			slog.Error("Failed to store the task", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the task"})
			return
		}
		slog.Info("Created task", "task_id", task.ID, "name", task.Name)
		c.JSON(http.StatusCreated, task)
	}
}

// SetTaskStatus updates one task's lifecycle status.
func SetTaskStatus(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var req SetTaskStatusRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, completed, or canceled"})
			return
		}
		err := st.SetTaskStatus(c.Request.Context(), id, datatypes.TaskStatus(req.Status))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		if err != nil {
			slog.Error("Failed to update the task status", "task_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update the task"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "task_id": id})
	}
}

// DeleteTask removes a task.
func DeleteTask(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := st.DeleteTask(c.Request.Context(), id); err != nil {
			slog.Error("Failed to delete the task", "task_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete the task"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_task_id": id})
	}
}
