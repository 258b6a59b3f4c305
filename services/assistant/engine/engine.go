// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine resolves free-text assistant queries.
//
// A query flows through three stages: the reset shortcut, ordered
// intent matching with a domain aggregation answer, and finally the
// moderated generative fallback for anything unmatched. Every resolved
// query is appended to the caller's conversation history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/classdesk/classdesk/services/assistant/aggregate"
	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/fallback"
	"github.com/classdesk/classdesk/services/assistant/intent"
	"github.com/classdesk/classdesk/services/assistant/observability"
	"github.com/classdesk/classdesk/services/assistant/store"
)

var tracer = otel.Tracer("classdesk.assistant.engine")

// ResetCommand clears the caller's conversation history when sent as
// the entire message.
const ResetCommand = "reset"

// ResetConfirmation is the reply to a reset command.
const ResetConfirmation = "Chat history reset!"

// FallbackIntent labels queries that matched no rule, for metrics and
// response metadata.
const FallbackIntent = "fallback"

// dashboardTTL bounds how stale a memoized dashboard snapshot may be
// when grounding a fallback prompt.
const dashboardTTL = 30 * time.Second

// Engine answers assistant queries against the store, falling back to
// the generative bridge for unmatched input.
type Engine struct {
	store   store.Store
	history store.HistoryStore
	bridge  *fallback.Bridge
	metrics *observability.AssistantMetrics

	// now is swappable for tests.
	now func() time.Time

	mu          sync.Mutex
	cachedStats aggregate.DashboardStats
	cachedAt    time.Time
}

func New(st store.Store, hist store.HistoryStore, bridge *fallback.Bridge,
	metrics *observability.AssistantMetrics) *Engine {
	return &Engine{
		store:   st,
		history: hist,
		bridge:  bridge,
		metrics: metrics,
		now:     time.Now,
	}
}

// snapshot is the data needed to answer any single query, read once up
// front so one answer never mixes state from two writes.
type snapshot struct {
	tasks    []datatypes.Task
	sched    datatypes.Schedule
	students []datatypes.Student
	records  map[string]datatypes.AttendanceDay
	tests    []datatypes.TestEntry
}

func (e *Engine) loadSnapshot(ctx context.Context) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.tasks, err = e.store.Tasks(ctx); err != nil {
		return snap, fmt.Errorf("loading tasks: %w", err)
	}
	if snap.sched, err = e.store.ScheduleToday(ctx); err != nil {
		return snap, fmt.Errorf("loading schedule: %w", err)
	}
	if snap.students, err = e.store.Students(ctx); err != nil {
		return snap, fmt.Errorf("loading students: %w", err)
	}
	if snap.records, err = e.store.AttendanceRecords(ctx); err != nil {
		return snap, fmt.Errorf("loading attendance: %w", err)
	}
	if snap.tests, err = e.store.Tests(ctx); err != nil {
		return snap, fmt.Errorf("loading tests: %w", err)
	}
	return snap, nil
}

// Answer resolves one query for the given identity. It returns the
// reply text and the name of the intent that produced it. Storage
// failures surface as errors; generative failures do not, those are
// folded into the reply by the fallback bridge.
func (e *Engine) Answer(ctx context.Context, identity, message string) (answer, intentName string, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Answer")
	defer span.End()

	trimmed := strings.TrimSpace(message)
	if strings.ToLower(trimmed) == ResetCommand {
		if err := e.history.ResetHistory(ctx, identity); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", "", fmt.Errorf("resetting history: %w", err)
		}
		e.metrics.RecordQuery(ResetCommand, true)
		return ResetConfirmation, ResetCommand, nil
	}

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", "", err
	}
	today := e.today()

	var reply string
	match, matched := intent.Resolve(trimmed)
	if matched {
		intentName = string(match.Intent)
		reply, err = e.dispatch(ctx, match, snap, today)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.metrics.RecordQuery(intentName, false)
			return "", intentName, err
		}
	} else {
		intentName = FallbackIntent
		reply = e.fallbackAnswer(ctx, identity, trimmed, snap, today)
	}
	span.SetAttributes(attribute.String("assistant.intent", intentName))

	if err := e.appendHistory(ctx, identity, trimmed, reply); err != nil {
		// The answer is already computed; losing one history turn is
		// not worth failing the query.
		slog.Warn("Failed to persist conversation turn", "identity", identity, "error", err)
	}
	e.metrics.RecordQuery(intentName, true)
	return reply, intentName, nil
}

func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

func (e *Engine) dispatch(ctx context.Context, m intent.Match, snap snapshot, today string) (string, error) {
	switch m.Intent {
	case intent.IntentSchedule:
		return e.answerSchedule(snap, m.ListOut), nil
	case intent.IntentAttendanceQuery:
		return e.answerAttendanceQuery(snap, m.Student), nil
	case intent.IntentAttendanceMark:
		return e.answerAttendanceMark(ctx, snap, m, today)
	case intent.IntentTests:
		return e.answerTests(snap, today), nil
	case intent.IntentStress:
		return e.answerStress(snap, today), nil
	case intent.IntentPendingTasks:
		return e.answerPendingTasks(snap), nil
	case intent.IntentPrioritize:
		return e.answerPrioritize(snap), nil
	case intent.IntentDeadlines:
		return e.answerDeadlines(snap, today), nil
	case intent.IntentStudyTips:
		return e.answerStudyTips(ctx, snap, m.Student)
	case intent.IntentOverdue:
		return e.answerOverdue(snap, today), nil
	case intent.IntentTimeEstimate:
		return e.answerTimeEstimate(snap), nil
	case intent.IntentBreaks:
		return e.answerBreaks(snap), nil
	default:
		return "", fmt.Errorf("unhandled intent %q", m.Intent)
	}
}

// scheduleOverviewLimit is how many characters of the schedule the
// non-listing reply previews.
const scheduleOverviewLimit = 50

func (e *Engine) answerSchedule(snap snapshot, listOut bool) string {
	text := aggregate.ScheduleText(snap.sched)
	if listOut {
		var numbered []string
		for i, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, line))
		}
		return "Good morning! Your schedule for today is as follows:\n" + strings.Join(numbered, "\n")
	}
	overview := text
	ellipsis := ""
	if runes := []rune(text); len(runes) > scheduleOverviewLimit {
		overview = string(runes[:scheduleOverviewLimit])
		ellipsis = "..."
	}
	return fmt.Sprintf("Good morning! You have a schedule for today. "+
		"Would you like me to list it out? Here\u2019s a brief overview: %s%s", overview, ellipsis)
}

// findStudent matches by name, case-insensitively.
func findStudent(students []datatypes.Student, name string) (datatypes.Student, bool) {
	for _, s := range students {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return datatypes.Student{}, false
}

func (e *Engine) answerAttendanceQuery(snap snapshot, name string) string {
	student, ok := findStudent(snap.students, name)
	if !ok {
		return "Student not found."
	}
	if student.Class == "" {
		return "Student class not found."
	}
	percent, total := aggregate.AttendancePercentage(snap.records, student.ID, student.Class)
	if total == 0 {
		return "No attendance records found."
	}
	return fmt.Sprintf("%s has %.1f%% attendance.", name, percent)
}

func (e *Engine) answerAttendanceMark(ctx context.Context, snap snapshot, m intent.Match, today string) (string, error) {
	student, ok := findStudent(snap.students, m.Student)
	if !ok {
		return "Student not found.", nil
	}
	if student.Class == "" {
		return "Student class not found.", nil
	}
	if err := e.store.MarkAttendance(ctx, student.ID, student.Class, today, m.MarkPresent); err != nil {
		return "", fmt.Errorf("marking attendance: %w", err)
	}
	status := "absent"
	if m.MarkPresent {
		status = "present"
	}
	return fmt.Sprintf("Marked %s as %s for today.", m.Student, status), nil
}

// upcomingTestsLimit caps the tests reply.
const upcomingTestsLimit = 5

func (e *Engine) answerTests(snap snapshot, today string) string {
	tests := aggregate.UpcomingTests(snap.tests, today, upcomingTestsLimit)
	if len(tests) == 0 {
		return "No tests scheduled in the near future."
	}
	var lines []string
	for _, t := range tests {
		lines = append(lines, fmt.Sprintf("%s on %s at %s", t.Subject, t.Date, t.Time))
	}
	return "You have the following tests scheduled:\n" + strings.Join(lines, "\n")
}

func (e *Engine) answerStress(snap snapshot, today string) string {
	_, activities := aggregate.ScheduleSummary(snap.sched)
	pending := aggregate.PendingCount(snap.tasks)
	upcoming := len(aggregate.UpcomingDeadlines(snap.tasks, today, aggregate.DeadlineWindowDays))
	level := aggregate.WorkloadStress(activities, pending, upcoming)
	return fmt.Sprintf("Your workload today is %s stress. You have %d activities, "+
		"%d pending tasks, and %d upcoming deadlines within 7 days.",
		level, activities, pending, upcoming)
}

func (e *Engine) answerPendingTasks(snap snapshot) string {
	lines := aggregate.PendingTasks(snap.tasks)
	if len(lines) == 0 {
		return "No pending tasks."
	}
	return "Your pending tasks are:\n" + strings.Join(lines, "\n")
}

func (e *Engine) answerPrioritize(snap snapshot) string {
	_, activities := aggregate.ScheduleSummary(snap.sched)
	lines := aggregate.Prioritize(snap.tasks, activities)
	if lines == nil {
		return aggregate.NothingToPrioritize
	}
	return "I recommend prioritizing the following today:\n" + strings.Join(lines, "\n")
}

func (e *Engine) answerDeadlines(snap snapshot, today string) string {
	upcoming := aggregate.UpcomingDeadlines(snap.tasks, today, aggregate.DeadlineWindowDays)
	if len(upcoming) == 0 {
		return "No upcoming deadlines in the next 7 days."
	}
	var lines []string
	for _, t := range upcoming {
		lines = append(lines, fmt.Sprintf("%s - Deadline: %s", t.Name, t.Deadline))
	}
	return "Your upcoming deadlines within 7 days are:\n" + strings.Join(lines, "\n")
}

func (e *Engine) answerStudyTips(ctx context.Context, snap snapshot, name string) (string, error) {
	student, ok := findStudent(snap.students, name)
	if !ok {
		return "Student not found.", nil
	}
	if student.Class == "" {
		return "Student class not found.", nil
	}
	percent, total := aggregate.AttendancePercentage(snap.records, student.ID, student.Class)
	if total == 0 {
		return "No attendance records found for study tips.", nil
	}
	score, ok, err := e.store.PerformanceScore(ctx, student.ID)
	if err != nil {
		return "", fmt.Errorf("loading performance score: %w", err)
	}
	if !ok {
		score = 0
	}
	tips := aggregate.StudyTips(percent, score)
	return fmt.Sprintf("Study tips for %s:\n%s", name, strings.Join(tips, "\n")), nil
}

func (e *Engine) answerOverdue(snap snapshot, today string) string {
	overdue := aggregate.OverdueTasks(snap.tasks, today)
	if len(overdue) == 0 {
		return "No overdue tasks."
	}
	var lines []string
	for _, t := range overdue {
		lines = append(lines, fmt.Sprintf("%s - Deadline: %s", t.Name, t.Deadline))
	}
	return "You have the following overdue tasks:\n" + strings.Join(lines, "\n")
}

func (e *Engine) answerTimeEstimate(snap snapshot) string {
	hours, minutes := aggregate.EstimateTotalTime(snap.tasks)
	return fmt.Sprintf("Your pending tasks are estimated to take %d hours and %d minutes to complete today.", hours, minutes)
}

func (e *Engine) answerBreaks(snap snapshot) string {
	_, activities := aggregate.ScheduleSummary(snap.sched)
	if activities == 0 {
		return "No activities scheduled today. You can take breaks anytime!"
	}
	lines := aggregate.BreakLines(snap.sched, datatypes.DayStart, datatypes.DayEnd)
	if len(lines) == 0 {
		return "No optimal break times available today due to a tight schedule."
	}
	return "Suggested break times today:\n" + strings.Join(lines, "\n")
}

func (e *Engine) fallbackAnswer(ctx context.Context, identity, message string, snap snapshot, today string) string {
	history, err := e.history.LoadHistory(ctx, identity)
	if err != nil {
		slog.Warn("Failed to load conversation history, answering without it", "identity", identity, "error", err)
		history = nil
	}

	stats := e.dashboardStats(snap, today)
	start := e.now()
	reply := e.bridge.Answer(ctx, message, stats.ContextString(), history)
	e.metrics.RecordFallbackDuration(e.now().Sub(start).Seconds())
	if reply == fallback.RefusalMessage {
		e.metrics.RecordModerationBlock()
	}
	return reply
}

// dashboardStats memoizes the derived dashboard so bursts of fallback
// queries do not recompute it per request.
func (e *Engine) dashboardStats(snap snapshot, today string) aggregate.DashboardStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now := e.now(); now.Sub(e.cachedAt) < dashboardTTL && !e.cachedAt.IsZero() {
		return e.cachedStats
	}
	e.cachedStats = aggregate.BuildDashboardStats(snap.tasks, snap.sched, snap.students, snap.records, today)
	e.cachedAt = e.now()
	return e.cachedStats
}

// Dashboard computes a fresh dashboard snapshot for the dashboard API.
func (e *Engine) Dashboard(ctx context.Context) (aggregate.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "Engine.Dashboard")
	defer span.End()

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return aggregate.DashboardStats{}, err
	}
	return aggregate.BuildDashboardStats(snap.tasks, snap.sched, snap.students, snap.records, e.today()), nil
}

func (e *Engine) appendHistory(ctx context.Context, identity, user, bot string) error {
	history, err := e.history.LoadHistory(ctx, identity)
	if err != nil {
		return err
	}
	history = append(history, datatypes.ConversationTurn{User: user, Bot: bot})
	if err := e.history.SaveHistory(ctx, identity, history); err != nil {
		return err
	}
	saved := len(history)
	if saved > datatypes.MaxStoredTurns {
		saved = datatypes.MaxStoredTurns
	}
	e.metrics.RecordHistoryLength(saved)
	return nil
}
