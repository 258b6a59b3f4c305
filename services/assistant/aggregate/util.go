// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aggregate

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// addDays shifts an ISO date string by n days. A malformed date is
// returned unchanged; deadline comparisons then simply fail to match,
// which is the documented degrade-to-default behavior.
func addDays(date string, n int) string {
	t, err := time.Parse(isoDate, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(isoDate)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
