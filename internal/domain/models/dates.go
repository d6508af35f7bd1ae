// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// LongDateLayout renders dates as "Monday, June 10, 2024".
const LongDateLayout = "Monday, January 2, 2006"

// DefaultDateWindow is the number of selectable days starting today.
const DefaultDateWindow = 7

// FormatDate renders t's calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatLongDate renders a "YYYY-MM-DD" date for display. Unparsable input is
// returned unchanged.
func FormatLongDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format(LongDateLayout)
}

// DateOptions returns the days offered by the date selector: days consecutive
// dates starting with from's calendar date.
func DateOptions(from time.Time, days int) []string {
	if days <= 0 {
		return nil
	}
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, FormatDate(start.AddDate(0, 0, i)))
	}
	return dates
}
