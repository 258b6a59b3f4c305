// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequest_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		req     QueryRequest
		wantErr bool
	}{
		{"valid minimal", QueryRequest{Message: "hello"}, false},
		{"missing message", QueryRequest{}, true},
		{"oversized message", QueryRequest{Message: strings.Repeat("a", MaxQueryBytes+1)}, true},
		{"message at limit", QueryRequest{Message: strings.Repeat("a", MaxQueryBytes)}, false},
		{"bad request id", QueryRequest{Message: "hi", RequestID: "not-a-uuid"}, true},
		{"valid request id", QueryRequest{Message: "hi", RequestID: "b9f3c6a0-7c2e-4d7a-9f53-0a1b2c3d4e5f"}, false},
		{"identity too long", QueryRequest{Message: "hi", Identity: strings.Repeat("x", 129)}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryRequest_EnsureDefaults(t *testing.T) {
	req := QueryRequest{Message: "hello"}
	req.EnsureDefaults()
	assert.NotEmpty(t, req.RequestID)
	assert.Positive(t, req.Timestamp)
	require.NoError(t, req.Validate())

	// Client-supplied values survive.
	fixed := QueryRequest{Message: "hello", RequestID: "b9f3c6a0-7c2e-4d7a-9f53-0a1b2c3d4e5f", Timestamp: 42}
	fixed.EnsureDefaults()
	assert.Equal(t, "b9f3c6a0-7c2e-4d7a-9f53-0a1b2c3d4e5f", fixed.RequestID)
	assert.Equal(t, int64(42), fixed.Timestamp)
}

func TestSchedule_Normalize(t *testing.T) {
	sched := Schedule{"09:00": "Math", "16:00": "dropped"}.Normalize()
	require.Len(t, sched, len(CanonicalSlots))
	assert.Equal(t, "Math", sched["09:00"])
	assert.Equal(t, "", sched["14:00"])
	_, extra := sched["16:00"]
	assert.False(t, extra)
}

func TestTask_Helpers(t *testing.T) {
	pending := Task{Status: TaskPending, Deadline: "2025-03-15"}
	assert.True(t, pending.IsPending())
	assert.True(t, pending.HasDeadline())
	assert.Equal(t, "2025-03-15", pending.DeadlineLabel())

	done := Task{Status: TaskCompleted}
	assert.False(t, done.IsPending())
	assert.False(t, done.HasDeadline())
	assert.Equal(t, "No deadline", done.DeadlineLabel())
}

func TestTask_EffectiveComplexity(t *testing.T) {
	assert.Equal(t, ComplexityMedium, Task{}.EffectiveComplexity())
	assert.Equal(t, ComplexityHigh, Task{Complexity: ComplexityHigh}.EffectiveComplexity())
	assert.Equal(t, ComplexityMedium, Task{Complexity: "weird"}.EffectiveComplexity())
}

func TestTailTurns(t *testing.T) {
	turns := []ConversationTurn{{User: "a"}, {User: "b"}, {User: "c"}}
	assert.Equal(t, turns, TailTurns(turns, 5))
	tail := TailTurns(turns, 2)
	require.Len(t, tail, 2)
	assert.Equal(t, "b", tail[0].User)
	assert.Equal(t, "c", tail[1].User)
}

func TestAttendanceKey(t *testing.T) {
	assert.Equal(t, "2025-03-10_CSE1", AttendanceKey("2025-03-10", "CSE1"))
	assert.True(t, KeyMatchesClass("2025-03-10_CSE1", "CSE1"))
	assert.False(t, KeyMatchesClass("2025-03-10_CSE1", "CSE"))
}

func TestIsValidClass(t *testing.T) {
	for _, c := range Classes {
		assert.True(t, IsValidClass(c))
	}
	assert.False(t, IsValidClass("ART"))
	assert.False(t, IsValidClass("cse1"))
}
