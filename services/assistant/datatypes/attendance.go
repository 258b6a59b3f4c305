// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "strings"

// AttendanceDay maps student ID to present/absent for one (date, class)
// sheet. A student missing from the map counts as absent.
type AttendanceDay map[string]bool

// AttendanceKey builds the document key for one class-day sheet,
// "2025-10-02_CSE1". Attendance percentage scans match on the class
// suffix, so the separator is part of the contract.
func AttendanceKey(date, class string) string {
	return date + "_" + class
}

// KeyMatchesClass reports whether an attendance key belongs to class.
func KeyMatchesClass(key, class string) bool {
	return strings.HasSuffix(key, "_"+class)
}
