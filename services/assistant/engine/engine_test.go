// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/fallback"
	"github.com/classdesk/classdesk/services/assistant/store"
	"github.com/classdesk/classdesk/services/assistant/store/badgerdb"
	"github.com/classdesk/classdesk/services/llm"
	"github.com/classdesk/classdesk/services/moderation"
)

type mockLLM struct {
	reply      string
	calls      int
	lastPrompt string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.reply, nil
}

// fixedNow keeps the tests date-stable.
var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

const today = "2025-03-10"

func newTestEngine(t *testing.T) (*Engine, *store.Badger, *mockLLM) {
	t.Helper()

	db, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := store.NewBadger(db)
	mod, err := moderation.NewEngine()
	require.NoError(t, err)
	mock := &mockLLM{reply: "a generated answer"}
	bridge := fallback.NewBridge(mock, mod, time.Second)

	eng := New(st, st, bridge, nil)
	eng.now = func() time.Time { return fixedNow }
	return eng, st, mock
}

func seedStudent(t *testing.T, st *store.Badger, id, name, class string) {
	t.Helper()
	require.NoError(t, st.PutStudent(context.Background(), datatypes.Student{
		ID: id, Name: name, Class: class,
	}))
}

func TestAnswer_ResetClearsHistory(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.SaveHistory(ctx, "teacher", []datatypes.ConversationTurn{{User: "hi", Bot: "hello"}}))

	answer, intentName, err := eng.Answer(ctx, "teacher", "  Reset ")
	require.NoError(t, err)
	assert.Equal(t, ResetConfirmation, answer)
	assert.Equal(t, ResetCommand, intentName)

	history, err := st.LoadHistory(ctx, "teacher")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnswer_ScheduleOverviewAndListOut(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	sched := datatypes.EmptySchedule()
	sched["09:00"] = "Math with CSE1"
	sched["11:00"] = "Staff meeting"
	require.NoError(t, st.SaveScheduleToday(ctx, sched))

	answer, intentName, err := eng.Answer(ctx, "teacher", "what is my schedule today, list it out")
	require.NoError(t, err)
	assert.Equal(t, "schedule", intentName)
	assert.Equal(t, "Good morning! Your schedule for today is as follows:\n1. 09:00: Math with CSE1\n2. 11:00: Staff meeting", answer)

	answer, _, err = eng.Answer(ctx, "teacher", "what is my schedule")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, "Good morning! You have a schedule for today."))
	assert.Contains(t, answer, "Here’s a brief overview:")
}

func TestAnswer_ScheduleOverviewTruncation(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	sched := datatypes.EmptySchedule()
	sched["09:00"] = "A very long activity description that keeps going and going"
	require.NoError(t, st.SaveScheduleToday(ctx, sched))

	answer, _, err := eng.Answer(ctx, "teacher", "what is my schedule")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(answer, "..."))
}

func TestAnswer_AttendanceQuery(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	seedStudent(t, st, "s1", "Ravi", "CSE1")
	require.NoError(t, st.SaveAttendanceDay(ctx, "2025-03-08", "CSE1", datatypes.AttendanceDay{"s1": true}))
	require.NoError(t, st.SaveAttendanceDay(ctx, "2025-03-09", "CSE1", datatypes.AttendanceDay{"s1": false}))

	answer, intentName, err := eng.Answer(ctx, "teacher", "how much is ravi attendance")
	require.NoError(t, err)
	assert.Equal(t, "attendance_query", intentName)
	assert.Equal(t, "ravi has 50.0% attendance.", answer)
}

func TestAnswer_AttendanceQueryNoRecords(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	seedStudent(t, st, "s1", "Ravi", "CSE1")

	answer, _, err := eng.Answer(context.Background(), "teacher", "how much is ravi attendance")
	require.NoError(t, err)
	assert.Equal(t, "No attendance records found.", answer)
}

func TestAnswer_AttendanceQueryUnknownStudent(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	answer, _, err := eng.Answer(context.Background(), "teacher", "how much is priya attendance")
	require.NoError(t, err)
	assert.Equal(t, "Student not found.", answer)
}

func TestAnswer_MarkAttendance(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()
	seedStudent(t, st, "s1", "Ravi", "CSE1")

	answer, intentName, err := eng.Answer(ctx, "teacher", "mark ravi present")
	require.NoError(t, err)
	assert.Equal(t, "attendance_mark", intentName)
	assert.Equal(t, "Marked ravi as present for today.", answer)

	day, err := st.AttendanceDay(ctx, today, "CSE1")
	require.NoError(t, err)
	assert.True(t, day["s1"])

	answer, _, err = eng.Answer(ctx, "teacher", "mark the ravi absent")
	require.NoError(t, err)
	assert.Equal(t, "Marked ravi as absent for today.", answer)

	day, err = st.AttendanceDay(ctx, today, "CSE1")
	require.NoError(t, err)
	assert.False(t, day["s1"])
}

func TestAnswer_Tests(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTest(ctx, datatypes.TestEntry{ID: "t1", Subject: "Algebra", Date: "2025-03-12", Time: "10:00"}))
	require.NoError(t, st.PutTest(ctx, datatypes.TestEntry{ID: "t2", Subject: "History", Date: "2025-03-01", Time: "09:00"}))

	answer, _, err := eng.Answer(ctx, "teacher", "do i have a test coming up")
	require.NoError(t, err)
	assert.Equal(t, "You have the following tests scheduled:\nAlgebra on 2025-03-12 at 10:00", answer)
}

func TestAnswer_TestsNone(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	answer, _, err := eng.Answer(context.Background(), "teacher", "are there any tests")
	require.NoError(t, err)
	assert.Equal(t, "No tests scheduled in the near future.", answer)
}

func TestAnswer_WorkloadStress(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, st.PutTask(ctx, datatypes.Task{
			ID:     fmt.Sprintf("task-%02d", i),
			Name:   fmt.Sprintf("Task %d", i),
			Status: datatypes.TaskPending,
		}))
	}

	answer, intentName, err := eng.Answer(ctx, "teacher", "is my work stressful today")
	require.NoError(t, err)
	assert.Equal(t, "workload_stress", intentName)
	assert.Equal(t, "Your workload today is moderate stress. You have 0 activities, 12 pending tasks, and 0 upcoming deadlines within 7 days.", answer)
}

func TestAnswer_PendingTasks(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "Grade quizzes", Deadline: "2025-03-14", Status: datatypes.TaskPending}))
	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "b", Name: "Plan lab", Deadline: "2025-03-11", Status: datatypes.TaskPending}))
	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "c", Name: "Done thing", Status: datatypes.TaskCompleted}))

	answer, _, err := eng.Answer(ctx, "teacher", "what are my pending tasks")
	require.NoError(t, err)
	assert.Equal(t, "Your pending tasks are:\nPlan lab - Deadline: 2025-03-11\nGrade quizzes - Deadline: 2025-03-14", answer)
}

func TestAnswer_Prioritize(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	answer, _, err := eng.Answer(ctx, "teacher", "what should i prioritize today")
	require.NoError(t, err)
	assert.Equal(t, "You have no tasks or activities to prioritize today. Enjoy a relaxed day!", answer)

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "Submit grades", Deadline: "2025-03-11", HighPriority: true, Status: datatypes.TaskPending}))
	sched := datatypes.EmptySchedule()
	sched["10:00"] = "Lecture"
	require.NoError(t, st.SaveScheduleToday(ctx, sched))

	answer, _, err = eng.Answer(ctx, "teacher", "what should i prioritize today")
	require.NoError(t, err)
	assert.Equal(t, "I recommend prioritizing the following today:\n1. Submit grades (Deadline: 2025-03-11, High Priority)\nAlso focus on your 1 scheduled activities today.", answer)
}

func TestAnswer_UpcomingDeadlines(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "In window", Deadline: "2025-03-15", Status: datatypes.TaskPending}))
	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "b", Name: "Out of window", Deadline: "2025-04-01", Status: datatypes.TaskPending}))

	answer, _, err := eng.Answer(ctx, "teacher", "what are my upcoming deadlines")
	require.NoError(t, err)
	assert.Equal(t, "Your upcoming deadlines within 7 days are:\nIn window - Deadline: 2025-03-15", answer)
}

func TestAnswer_StudyTips(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	seedStudent(t, st, "s1", "Ravi", "CSE1")
	require.NoError(t, st.SaveAttendanceDay(ctx, "2025-03-08", "CSE1", datatypes.AttendanceDay{"s1": false}))
	require.NoError(t, st.SaveAttendanceDay(ctx, "2025-03-09", "CSE1", datatypes.AttendanceDay{"s1": false}))
	require.NoError(t, st.PutPerformanceScore(ctx, datatypes.PerformanceScore{StudentID: "s1", AverageScore: 55}))

	answer, intentName, err := eng.Answer(ctx, "teacher", "what study tips for ravi")
	require.NoError(t, err)
	assert.Equal(t, "study_tips", intentName)
	assert.Equal(t, "Study tips for ravi:\n"+
		"Encourage regular attendance and provide catch-up resources.\n"+
		"Focus on foundational concepts and offer extra practice problems.", answer)
}

func TestAnswer_StudyTipsNoRecords(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	seedStudent(t, st, "s1", "Ravi", "CSE1")

	answer, _, err := eng.Answer(context.Background(), "teacher", "what study tips for ravi")
	require.NoError(t, err)
	assert.Equal(t, "No attendance records found for study tips.", answer)
}

func TestAnswer_OverdueTasks(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "Old report", Deadline: "2025-03-01", Status: datatypes.TaskPending}))
	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "b", Name: "Newer miss", Deadline: "2025-03-05", Status: datatypes.TaskPending}))

	answer, _, err := eng.Answer(ctx, "teacher", "do i have any overdue tasks")
	require.NoError(t, err)
	assert.Equal(t, "You have the following overdue tasks:\nNewer miss - Deadline: 2025-03-05\nOld report - Deadline: 2025-03-01", answer)
}

func TestAnswer_TimeEstimate(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "Quick", Complexity: datatypes.ComplexityLow, Status: datatypes.TaskPending}))
	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "b", Name: "Long", Complexity: datatypes.ComplexityHigh, Status: datatypes.TaskPending}))

	answer, _, err := eng.Answer(ctx, "teacher", "how much time will my tasks take today")
	require.NoError(t, err)
	assert.Equal(t, "Your pending tasks are estimated to take 1 hours and 15 minutes to complete today.", answer)
}

func TestAnswer_Breaks(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	answer, _, err := eng.Answer(ctx, "teacher", "when should i take a break today")
	require.NoError(t, err)
	assert.Equal(t, "No activities scheduled today. You can take breaks anytime!", answer)

	sched := datatypes.EmptySchedule()
	sched["13:00"] = "Lab session"
	require.NoError(t, st.SaveScheduleToday(ctx, sched))

	answer, _, err = eng.Answer(ctx, "teacher", "when should i take a break today")
	require.NoError(t, err)
	assert.Equal(t, "Suggested break times today:\n"+
		"Take a break from 09:00 to 13:00 (240 minutes)\n"+
		"Take a break from 13:00 to 15:00 (remaining time)", answer)
}

func TestAnswer_FallbackUsesContextAndHistory(t *testing.T) {
	eng, st, mock := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.SaveHistory(ctx, "teacher", []datatypes.ConversationTurn{
		{User: "earlier question", Bot: "earlier answer"},
	}))

	answer, intentName, err := eng.Answer(ctx, "teacher", "tell me something encouraging")
	require.NoError(t, err)
	assert.Equal(t, FallbackIntent, intentName)
	assert.Equal(t, "a generated answer", answer)
	require.Equal(t, 1, mock.calls)
	assert.Contains(t, mock.lastPrompt, "Teacher dashboard stats:")
	assert.Contains(t, mock.lastPrompt, "User: earlier question\nAI: earlier answer")
}

func TestAnswer_FallbackModerated(t *testing.T) {
	eng, _, mock := newTestEngine(t)

	answer, _, err := eng.Answer(context.Background(), "teacher", "you are useless")
	require.NoError(t, err)
	assert.Equal(t, fallback.RefusalMessage, answer)
	assert.Zero(t, mock.calls)
}

func TestAnswer_AppendsHistory(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := eng.Answer(ctx, "teacher", "what are my pending tasks")
	require.NoError(t, err)

	history, err := st.LoadHistory(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "what are my pending tasks", history[0].User)
	assert.Equal(t, "No pending tasks.", history[0].Bot)
}

func TestAnswer_HistoryIsolatedByIdentity(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := eng.Answer(ctx, "alice", "what are my pending tasks")
	require.NoError(t, err)

	history, err := st.LoadHistory(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnswer_HistoryCapped(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	var seed []datatypes.ConversationTurn
	for i := 0; i < datatypes.MaxStoredTurns; i++ {
		seed = append(seed, datatypes.ConversationTurn{
			User: fmt.Sprintf("question %d", i),
			Bot:  fmt.Sprintf("answer %d", i),
		})
	}
	require.NoError(t, st.SaveHistory(ctx, "teacher", seed))

	_, _, err := eng.Answer(ctx, "teacher", "what are my pending tasks")
	require.NoError(t, err)

	history, err := st.LoadHistory(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, history, datatypes.MaxStoredTurns)
	assert.Equal(t, "question 1", history[0].User)
	assert.Equal(t, "what are my pending tasks", history[datatypes.MaxStoredTurns-1].User)
}

func TestDashboard(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.PutTask(ctx, datatypes.Task{ID: "a", Name: "Pending", Deadline: "2025-03-12", Status: datatypes.TaskPending}))
	sched := datatypes.EmptySchedule()
	sched["09:00"] = "Math"
	require.NoError(t, st.SaveScheduleToday(ctx, sched))

	stats, err := eng.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Activities)
	assert.Equal(t, 1, stats.PendingTasks)
	assert.Equal(t, 1, stats.UpcomingDeadlines)
	assert.Equal(t, "09:00: Math", stats.ScheduleText)
}
