// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// CanonicalSlots is the fixed ordered set of daily schedule slot keys.
// Every consumer of the schedule (store, aggregate, handlers) shares
// this single definition; a persisted schedule document missing a slot
// is treated as having an empty activity for it.
var CanonicalSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00",
}

// DayStart and DayEnd bound the break-suggestion window.
const (
	DayStart = "09:00"
	DayEnd   = "15:00"
)

// Schedule maps a slot key to its activity text. An empty string means
// the slot is free.
type Schedule map[string]string

// Normalize returns a copy of the schedule containing exactly the
// canonical slots, defaulting missing slots to "". Unknown keys are
// dropped.
func (s Schedule) Normalize() Schedule {
	out := make(Schedule, len(CanonicalSlots))
	for _, slot := range CanonicalSlots {
		out[slot] = s[slot]
	}
	return out
}

// EmptySchedule returns a schedule with every canonical slot free.
func EmptySchedule() Schedule {
	return Schedule{}.Normalize()
}
