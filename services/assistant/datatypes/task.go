// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the entity model shared by the assistant
// service: tasks, schedule slots, students, attendance sheets, tests,
// notes, and conversation history.
//
// Entities are plain structs persisted as JSON by the store package.
// Optional fields degrade to documented defaults rather than erroring;
// the aggregate package relies on that.
package datatypes

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskCanceled  TaskStatus = "canceled"
)

// TaskComplexity drives per-task time estimation.
type TaskComplexity string

const (
	ComplexityLow    TaskComplexity = "low"
	ComplexityMedium TaskComplexity = "medium"
	ComplexityHigh   TaskComplexity = "high"
)

// Task is a teacher to-do item.
//
// Deadline is an ISO date string ("2025-10-02") or empty when the task
// has no deadline. ISO dates compare correctly as plain strings, which
// the deadline windowing in the aggregate package depends on.
type Task struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Deadline     string         `json:"deadline,omitempty"`
	Status       TaskStatus     `json:"status"`
	HighPriority bool           `json:"high_priority"`
	Complexity   TaskComplexity `json:"complexity,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// IsPending reports whether the task still needs doing.
func (t Task) IsPending() bool {
	return t.Status == TaskPending
}

// HasDeadline reports whether a deadline date is set.
func (t Task) HasDeadline() bool {
	return t.Deadline != ""
}

// DeadlineLabel renders the deadline for user-facing task lines.
func (t Task) DeadlineLabel() string {
	if t.Deadline == "" {
		return "No deadline"
	}
	return t.Deadline
}

// EffectiveComplexity resolves the complexity default. Tasks created
// before the complexity field existed have it empty; they estimate as
// medium.
func (t Task) EffectiveComplexity() TaskComplexity {
	switch t.Complexity {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return t.Complexity
	default:
		return ComplexityMedium
	}
}
