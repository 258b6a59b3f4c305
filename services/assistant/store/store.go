// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists assistant entities and conversation history.
//
// The query engine treats the store as an external collaborator: store
// failures propagate to the caller unhandled, because the engine has no
// recovery strategy for a broken persistence layer. Data absence is not
// a failure; listing operations return empty collections and
// LoadHistory returns an empty sequence.
package store

import (
	"context"
	"errors"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
)

// ErrNotFound indicates the addressed entity does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the storage accessor for domain entities.
type Store interface {
	// Tasks returns all tasks ordered by creation time.
	Tasks(ctx context.Context) ([]datatypes.Task, error)
	PutTask(ctx context.Context, task datatypes.Task) error
	// SetTaskStatus updates one task's status. ErrNotFound if absent.
	SetTaskStatus(ctx context.Context, id string, status datatypes.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error

	// ScheduleToday returns today's schedule normalized to the
	// canonical slot set (missing document yields an empty schedule).
	ScheduleToday(ctx context.Context) (datatypes.Schedule, error)
	SaveScheduleToday(ctx context.Context, sched datatypes.Schedule) error

	Students(ctx context.Context) ([]datatypes.Student, error)
	PutStudent(ctx context.Context, s datatypes.Student) error

	// AttendanceRecords returns every attendance sheet keyed by
	// "{date}_{class}".
	AttendanceRecords(ctx context.Context) (map[string]datatypes.AttendanceDay, error)
	// AttendanceDay returns one sheet; an empty sheet when absent.
	AttendanceDay(ctx context.Context, date, class string) (datatypes.AttendanceDay, error)
	// MarkAttendance sets one student's flag on the (date, class)
	// sheet with a read-modify-write inside a single transaction, so
	// concurrent marks for different students in the same class-day
	// merge instead of overwriting each other.
	MarkAttendance(ctx context.Context, studentID, class, date string, present bool) error
	// SaveAttendanceDay replaces a whole class-day sheet.
	SaveAttendanceDay(ctx context.Context, date, class string, day datatypes.AttendanceDay) error

	Tests(ctx context.Context) ([]datatypes.TestEntry, error)
	PutTest(ctx context.Context, t datatypes.TestEntry) error

	Notes(ctx context.Context) ([]datatypes.Note, error)
	PutNote(ctx context.Context, n datatypes.Note) error
	DeleteNote(ctx context.Context, id string) error

	// PerformanceScore returns the most recent score for a student;
	// ok=false when none has been recorded.
	PerformanceScore(ctx context.Context, studentID string) (score float64, ok bool, err error)
	PutPerformanceScore(ctx context.Context, p datatypes.PerformanceScore) error
}

// HistoryStore persists per-identity conversation history.
//
// Histories are addressed by a stable identity key and obey last writer
// wins. The service assumes at most one in-flight request per identity;
// that single-writer precondition is part of this contract and is not
// enforced internally.
type HistoryStore interface {
	// LoadHistory returns the stored turns, oldest first. An identity
	// with no history yields an empty slice, not an error.
	LoadHistory(ctx context.Context, identity string) ([]datatypes.ConversationTurn, error)
	// SaveHistory persists the turns, trimming to the newest
	// datatypes.MaxStoredTurns before writing.
	SaveHistory(ctx context.Context, identity string, turns []datatypes.ConversationTurn) error
	// ResetHistory clears the identity's history.
	ResetHistory(ctx context.Context, identity string) error
}
