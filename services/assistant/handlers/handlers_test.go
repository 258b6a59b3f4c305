// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/engine"
	"github.com/classdesk/classdesk/services/assistant/fallback"
	"github.com/classdesk/classdesk/services/assistant/middleware"
	"github.com/classdesk/classdesk/services/assistant/routes"
	"github.com/classdesk/classdesk/services/assistant/store"
	"github.com/classdesk/classdesk/services/assistant/store/badgerdb"
	"github.com/classdesk/classdesk/services/llm"
	"github.com/classdesk/classdesk/services/moderation"
)

type stubLLM struct {
	reply string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	return s.reply, nil
}

type testServer struct {
	router *gin.Engine
	store  *store.Badger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := store.NewBadger(db)

	mod, err := moderation.NewEngine()
	require.NoError(t, err)
	bridge := fallback.NewBridge(&stubLLM{reply: "stub answer"}, mod, 0)
	eng := engine.New(st, st, bridge, nil)

	router := gin.New()
	router.Use(middleware.IdentityMiddleware())
	routes.SetupRoutes(router, eng, st, st, false)
	return &testServer{router: router, store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleQuery_StructuredIntent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/assistant/query", gin.H{
		"message": "what are my pending tasks",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.QueryResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "pending_tasks", resp.Intent)
	assert.Equal(t, "No pending tasks.", resp.Answer)
	assert.NotEmpty(t, resp.RequestID)
	assert.NotEmpty(t, resp.ResponseID)
}

func TestHandleQuery_FallbackIntent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/assistant/query", gin.H{
		"message": "give me ideas for a science fair",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.QueryResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "fallback", resp.Intent)
	assert.Equal(t, "stub answer", resp.Answer)
}

func TestHandleQuery_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/query", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_MissingMessage(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/v1/assistant/query", gin.H{"identity": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_OversizedMessage(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/v1/assistant/query", gin.H{
		"message": strings.Repeat("a", datatypes.MaxQueryBytes+1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_IdentityHeaderScopesHistory(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/query",
		strings.NewReader(`{"message":"what are my pending tasks"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.IdentityHeader, "teacher-7")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	turns, err := ts.store.LoadHistory(context.Background(), "teacher-7")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "what are my pending tasks", turns[0].User)

	other, err := ts.store.LoadHistory(context.Background(), middleware.DefaultIdentity)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistoryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, ts.store.SaveHistory(ctx, "teacher-1", []datatypes.ConversationTurn{
		{User: "hi", Bot: "hello"},
	}))

	w := ts.do(t, http.MethodGet, "/v1/assistant/history?identity=teacher-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Identity string                       `json:"identity"`
		History  []datatypes.ConversationTurn `json:"history"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "teacher-1", body.Identity)
	require.Len(t, body.History, 1)
	assert.Equal(t, "hi", body.History[0].User)

	w = ts.do(t, http.MethodDelete, "/v1/assistant/history?identity=teacher-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	turns, err := ts.store.LoadHistory(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestHistoryEndpoints_RejectsUnsafeIdentity(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/v1/assistant/history?identity=..%2Fetc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/tasks", gin.H{
		"name":          "Grade essays",
		"deadline":      "2025-03-15",
		"high_priority": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.Task
	decodeBody(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, datatypes.TaskPending, created.Status)
	assert.True(t, created.HighPriority)

	w = ts.do(t, http.MethodGet, "/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Tasks []datatypes.Task `json:"tasks"`
	}
	decodeBody(t, w, &listed)
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, "Grade essays", listed.Tasks[0].Name)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/v1/tasks/%s/status", created.ID), gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/tasks", nil)
	decodeBody(t, w, &listed)
	assert.Empty(t, listed.Tasks)
}

func TestCreateTask_RejectsBadDeadline(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/v1/tasks", gin.H{"name": "x", "deadline": "March 15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetTaskStatus_NotFound(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/v1/tasks/nope/status", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetTaskStatus_RejectsUnknownStatus(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/v1/tasks/nope/status", gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/v1/schedule/today", gin.H{
		"09:00": "Math",
		"13:00": "Lab",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/schedule/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Schedule datatypes.Schedule `json:"schedule"`
		Slots    []string           `json:"slots"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "Math", body.Schedule["09:00"])
	assert.Equal(t, "", body.Schedule["10:00"])
	assert.Equal(t, datatypes.CanonicalSlots, body.Slots)
}

func TestStudentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/students", gin.H{"name": "Ravi", "class": "CSE1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.Student
	decodeBody(t, w, &created)
	require.NotEmpty(t, created.ID)

	w = ts.do(t, http.MethodPost, "/v1/students", gin.H{"name": "Anita", "class": "ART"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/v1/students/%s/performance", created.ID),
		gin.H{"average_score": 72.5})
	require.Equal(t, http.StatusOK, w.Code)

	score, ok, err := ts.store.PerformanceScore(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 72.5, score, 0.001)
}

func TestAttendanceEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/attendance/mark", gin.H{
		"student_id": "s1",
		"class":      "CSE1",
		"date":       "2025-03-10",
		"present":    true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/attendance?date=2025-03-10&class=CSE1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var day struct {
		Present datatypes.AttendanceDay `json:"present"`
	}
	decodeBody(t, w, &day)
	assert.True(t, day.Present["s1"])

	// One of the two parameters without the other is rejected.
	w = ts.do(t, http.MethodGet, "/v1/attendance?date=2025-03-10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/tests", gin.H{
		"subject": "Math", "date": "2025-03-12", "time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/tests", gin.H{
		"subject": "Physics", "date": "soon", "time": "10:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/tests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Tests []datatypes.TestEntry `json:"tests"`
	}
	decodeBody(t, w, &listed)
	require.Len(t, listed.Tests, 1)
	assert.Equal(t, "Math", listed.Tests[0].Subject)
}

func TestNoteEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/notes", gin.H{
		"title": "Order lab kits", "category": "nonsense",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.Note
	decodeBody(t, w, &created)
	assert.Equal(t, "General", created.Category)

	w = ts.do(t, http.MethodGet, "/v1/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Notes []datatypes.Note `json:"notes"`
	}
	decodeBody(t, w, &listed)
	require.Len(t, listed.Notes, 1)

	w = ts.do(t, http.MethodDelete, "/v1/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, ts.store.PutTask(ctx, datatypes.Task{
		ID: "t1", Name: "Grade essays", Status: datatypes.TaskPending,
	}))

	w := ts.do(t, http.MethodGet, "/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	decodeBody(t, w, &body)
	for _, key := range []string{"activities", "pending_tasks", "attendance_alerts", "upcoming_deadlines", "schedule"} {
		assert.Contains(t, body, key)
	}
}
