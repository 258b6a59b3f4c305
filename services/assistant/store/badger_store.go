// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store/badgerdb"
)

var tracer = otel.Tracer("classdesk.assistant.store")

// Key prefixes. One Badger database holds every entity kind.
const (
	prefixTask     = "task/"
	prefixStudent  = "student/"
	prefixAttend   = "attendance/"
	prefixTest     = "test/"
	prefixNote     = "note/"
	prefixPerf     = "perf/"
	prefixHistory  = "history/"
	keyScheduleDay = "schedule/today"
)

// Badger implements Store and HistoryStore on one BadgerDB instance.
type Badger struct {
	db *badgerdb.DB
}

// NewBadger wraps an opened database.
func NewBadger(db *badgerdb.DB) *Badger {
	return &Badger{db: db}
}

var (
	_ Store        = (*Badger)(nil)
	_ HistoryStore = (*Badger)(nil)
)

// getJSON reads key into out. Returns ErrNotFound for a missing key.
func (b *Badger) getJSON(key string, out interface{}) error {
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return nil
}

// setJSON writes v under key.
func (b *Badger) setJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// listJSON collects every value under prefix into items via unmarshal.
func listJSON[T any](b *Badger, prefix string) ([]T, error) {
	var items []T
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var item T
				if err := json.Unmarshal(val, &item); err != nil {
					return err
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return items, nil
}

func (b *Badger) delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Tasks
// ----------------------------------------------------------------------------

func (b *Badger) Tasks(ctx context.Context) ([]datatypes.Task, error) {
	tasks, err := listJSON[datatypes.Task](b, prefixTask)
	if err != nil {
		return nil, err
	}
	// Creation order is the documented collection order.
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (b *Badger) PutTask(ctx context.Context, task datatypes.Task) error {
	return b.setJSON(prefixTask+task.ID, task)
}

func (b *Badger) SetTaskStatus(ctx context.Context, id string, status datatypes.TaskStatus) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixTask + id)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var task datatypes.Task
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		}); err != nil {
			return err
		}
		task.Status = status
		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set task status %s: %w", id, err)
	}
	return nil
}

func (b *Badger) DeleteTask(ctx context.Context, id string) error {
	return b.delete(prefixTask + id)
}

// ----------------------------------------------------------------------------
// Schedule
// ----------------------------------------------------------------------------

func (b *Badger) ScheduleToday(ctx context.Context) (datatypes.Schedule, error) {
	var sched datatypes.Schedule
	err := b.getJSON(keyScheduleDay, &sched)
	if errors.Is(err, ErrNotFound) {
		return datatypes.EmptySchedule(), nil
	}
	if err != nil {
		return nil, err
	}
	return sched.Normalize(), nil
}

func (b *Badger) SaveScheduleToday(ctx context.Context, sched datatypes.Schedule) error {
	return b.setJSON(keyScheduleDay, sched.Normalize())
}

// ----------------------------------------------------------------------------
// Students and performance
// ----------------------------------------------------------------------------

func (b *Badger) Students(ctx context.Context) ([]datatypes.Student, error) {
	students, err := listJSON[datatypes.Student](b, prefixStudent)
	if err != nil {
		return nil, err
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (b *Badger) PutStudent(ctx context.Context, s datatypes.Student) error {
	return b.setJSON(prefixStudent+s.ID, s)
}

func (b *Badger) PerformanceScore(ctx context.Context, studentID string) (float64, bool, error) {
	var p datatypes.PerformanceScore
	err := b.getJSON(prefixPerf+studentID, &p)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p.AverageScore, true, nil
}

func (b *Badger) PutPerformanceScore(ctx context.Context, p datatypes.PerformanceScore) error {
	return b.setJSON(prefixPerf+p.StudentID, p)
}

// ----------------------------------------------------------------------------
// Attendance
// ----------------------------------------------------------------------------

func (b *Badger) AttendanceRecords(ctx context.Context) (map[string]datatypes.AttendanceDay, error) {
	records := make(map[string]datatypes.AttendanceDay)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixAttend)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())[len(prefixAttend):]
			err := item.Value(func(val []byte) error {
				var day datatypes.AttendanceDay
				if err := json.Unmarshal(val, &day); err != nil {
					return err
				}
				records[key] = day
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func (b *Badger) AttendanceDay(ctx context.Context, date, class string) (datatypes.AttendanceDay, error) {
	var day datatypes.AttendanceDay
	err := b.getJSON(prefixAttend+datatypes.AttendanceKey(date, class), &day)
	if errors.Is(err, ErrNotFound) {
		return datatypes.AttendanceDay{}, nil
	}
	if err != nil {
		return nil, err
	}
	return day, nil
}

func (b *Badger) MarkAttendance(ctx context.Context, studentID, class, date string, present bool) error {
	ctx, span := tracer.Start(ctx, "Badger.MarkAttendance")
	defer span.End()
	span.SetAttributes(
		attribute.String("attendance.class", class),
		attribute.String("attendance.date", date),
	)

	key := []byte(prefixAttend + datatypes.AttendanceKey(date, class))
	// Read-modify-write inside one transaction: concurrent marks for
	// different students in the same class-day merge rather than
	// clobbering the whole sheet.
	err := b.db.Update(func(txn *badger.Txn) error {
		day := datatypes.AttendanceDay{}
		item, err := txn.Get(key)
		if err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &day)
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		day[studentID] = present
		data, err := json.Marshal(day)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark attendance %s/%s: %w", date, class, err)
	}
	return nil
}

func (b *Badger) SaveAttendanceDay(ctx context.Context, date, class string, day datatypes.AttendanceDay) error {
	return b.setJSON(prefixAttend+datatypes.AttendanceKey(date, class), day)
}

// ----------------------------------------------------------------------------
// Tests and notes
// ----------------------------------------------------------------------------

func (b *Badger) Tests(ctx context.Context) ([]datatypes.TestEntry, error) {
	tests, err := listJSON[datatypes.TestEntry](b, prefixTest)
	if err != nil {
		return nil, err
	}
	sort.Slice(tests, func(i, j int) bool {
		if tests[i].Date != tests[j].Date {
			return tests[i].Date < tests[j].Date
		}
		return tests[i].Time < tests[j].Time
	})
	return tests, nil
}

func (b *Badger) PutTest(ctx context.Context, t datatypes.TestEntry) error {
	return b.setJSON(prefixTest+t.ID, t)
}

func (b *Badger) Notes(ctx context.Context) ([]datatypes.Note, error) {
	notes, err := listJSON[datatypes.Note](b, prefixNote)
	if err != nil {
		return nil, err
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (b *Badger) PutNote(ctx context.Context, n datatypes.Note) error {
	return b.setJSON(prefixNote+n.ID, n)
}

func (b *Badger) DeleteNote(ctx context.Context, id string) error {
	return b.delete(prefixNote + id)
}

// ----------------------------------------------------------------------------
// Conversation history
// ----------------------------------------------------------------------------

func (b *Badger) LoadHistory(ctx context.Context, identity string) ([]datatypes.ConversationTurn, error) {
	var turns []datatypes.ConversationTurn
	err := b.getJSON(prefixHistory+identity, &turns)
	if errors.Is(err, ErrNotFound) {
		return []datatypes.ConversationTurn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (b *Badger) SaveHistory(ctx context.Context, identity string, turns []datatypes.ConversationTurn) error {
	ctx, span := tracer.Start(ctx, "Badger.SaveHistory")
	defer span.End()
	span.SetAttributes(attribute.Int("history.turns", len(turns)))

	turns = datatypes.TailTurns(turns, datatypes.MaxStoredTurns)
	return b.setJSON(prefixHistory+identity, turns)
}

func (b *Badger) ResetHistory(ctx context.Context, identity string) error {
	return b.setJSON(prefixHistory+identity, []datatypes.ConversationTurn{})
}
