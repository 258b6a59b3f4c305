// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Classes is the enumerated set of classes students can belong to.
var Classes = []string{"CSE1", "CSE2", "CSE3", "IS", "AIML"}

// Student is a pupil tracked for attendance and performance.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// IsValidClass reports whether class is one of the enumerated classes.
func IsValidClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}

// PerformanceScore is the most recent externally supplied average score
// for a student, consumed by study-tip generation.
type PerformanceScore struct {
	StudentID    string  `json:"student_id"`
	AverageScore float64 `json:"average_score"`
	Timestamp    int64   `json:"timestamp"`
}
