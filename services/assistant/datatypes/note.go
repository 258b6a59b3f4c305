// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// NoteCategories are the accepted note categories. Unknown categories
// fall back to "General" at create time.
var NoteCategories = []string{"General", "Urgent", "Planning", "Ideas"}

// Note is a free-form teacher note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TestEntry is an upcoming class test.
type TestEntry struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Date    string `json:"date"` // ISO date
	Time    string `json:"time"` // clock label, e.g. "10:00"
}
