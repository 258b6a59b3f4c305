// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aggregate

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
)

// MinBreakMinutes is the gap a free interval must exceed to count as a
// suggested break.
const MinBreakMinutes = 15

// Break is one suggested free interval, [Start, End). Final marks the
// trailing interval that runs from the last activity to the end of the
// day; it is rendered without a minute count.
type Break struct {
	Start   string
	End     string
	Minutes int
	Final   bool
}

const clockLayout = "15:04"

// SuggestBreakTimes walks the scheduled activities from dayStart and
// yields qualifying break intervals.
//
// The cursor starts at dayStart. Each step finds the earliest activity
// strictly after the cursor; when the gap to it exceeds MinBreakMinutes
// a break [cursor, activity) is yielded, and the cursor advances to the
// activity time either way. When no further activity exists before
// dayEnd, the remaining [cursor, dayEnd) is yielded and the walk stops,
// so the emitted intervals plus the activity instants cover the whole
// window.
//
// The returned sequence is lazy, finite, and restartable: ranging over
// it again replays the walk from dayStart. Slots with blank activity
// text are ignored; an empty activity list yields nothing (callers
// render the no-breaks sentinel).
func SuggestBreakTimes(sched datatypes.Schedule, dayStart, dayEnd string) iter.Seq[Break] {
	return func(yield func(Break) bool) {
		times := activityTimes(sched)
		if len(times) == 0 {
			return
		}
		cursor, err1 := time.Parse(clockLayout, dayStart)
		end, err2 := time.Parse(clockLayout, dayEnd)
		if err1 != nil || err2 != nil {
			return
		}

		for cursor.Before(end) {
			next, ok := earliestAfter(times, cursor)
			if !ok {
				yield(Break{
					Start:   cursor.Format(clockLayout),
					End:     dayEnd,
					Minutes: int(end.Sub(cursor).Minutes()),
					Final:   true,
				})
				return
			}
			gap := int(next.Sub(cursor).Minutes())
			if gap > MinBreakMinutes {
				if !yield(Break{
					Start:   cursor.Format(clockLayout),
					End:     next.Format(clockLayout),
					Minutes: gap,
				}) {
					return
				}
			}
			cursor = next
		}
	}
}

// BreakLines collects and renders the suggested breaks.
func BreakLines(sched datatypes.Schedule, dayStart, dayEnd string) []string {
	var lines []string
	for b := range SuggestBreakTimes(sched, dayStart, dayEnd) {
		if b.Final {
			lines = append(lines, fmt.Sprintf("Take a break from %s to %s (remaining time)", b.Start, b.End))
			continue
		}
		lines = append(lines, fmt.Sprintf("Take a break from %s to %s (%d minutes)", b.Start, b.End, b.Minutes))
	}
	return lines
}

// activityTimes returns the parsed, sorted times of non-empty slots.
// Unparseable slot keys are skipped.
func activityTimes(sched datatypes.Schedule) []time.Time {
	var times []time.Time
	for slot, act := range sched {
		if trimmed(act) == "" {
			continue
		}
		t, err := time.Parse(clockLayout, slot)
		if err != nil {
			continue
		}
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// earliestAfter returns the first time strictly after cursor.
func earliestAfter(sorted []time.Time, cursor time.Time) (time.Time, bool) {
	for _, t := range sorted {
		if t.After(cursor) {
			return t, true
		}
	}
	return time.Time{}, false
}
