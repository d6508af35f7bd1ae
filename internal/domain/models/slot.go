// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"errors"
	"time"
)

// Period is a time-of-day bucket used to group slots for display.
type Period string

const (
	PeriodMorning   Period = "Morning"
	PeriodAfternoon Period = "Afternoon"
	PeriodEvening   Period = "Evening"
)

// Periods lists every period in display order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

// Period boundaries (hour of day, inclusive lower bound).
const (
	afternoonStartHour = 12
	eveningStartHour   = 17
)

var errInvalidClock = errors.New("clock must be formatted as HH:MM with hour 00-23 and minute 00-59")

// ParseClock parses a 24-hour "HH:MM" wall-clock time.
func ParseClock(clock string) (hour, minute int, err error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, 0, errInvalidClock
	}
	for _, i := range []int{0, 1, 3, 4} {
		if clock[i] < '0' || clock[i] > '9' {
			return 0, 0, errInvalidClock
		}
	}
	hour = int(clock[0]-'0')*10 + int(clock[1]-'0')
	minute = int(clock[3]-'0')*10 + int(clock[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, errInvalidClock
	}
	return hour, minute, nil
}

// FormatClock renders "HH:MM" on a 12-hour clock, e.g. "13:30" becomes "1:30 PM".
// Values that are not a valid clock are returned unchanged.
func FormatClock(clock string) string {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return clock
	}
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, time.UTC).Format("3:04 PM")
}

// FormatDisplayTime renders the slot's start on a 12-hour clock.
func FormatDisplayTime(slot TimeSlot) string {
	return FormatClock(slot.Time)
}

// PeriodOf returns the period an hour of the day belongs to.
func PeriodOf(hour int) Period {
	switch {
	case hour < afternoonStartHour:
		return PeriodMorning
	case hour < eveningStartHour:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// SlotPeriod returns the period of the slot's wall-clock start. A slot whose
// time cannot be parsed is treated as starting at hour 0.
func SlotPeriod(slot TimeSlot) Period {
	hour, _, err := ParseClock(slot.Time)
	if err != nil {
		hour = 0
	}
	return PeriodOf(hour)
}

// GroupByPeriod partitions slots by period. Every slot lands in exactly one
// bucket and keeps its relative input order; empty buckets are omitted.
func GroupByPeriod(slots []TimeSlot) map[Period][]TimeSlot {
	groups := make(map[Period][]TimeSlot, len(Periods))
	for _, slot := range slots {
		p := SlotPeriod(slot)
		groups[p] = append(groups[p], slot)
	}
	return groups
}

// SameSlot reports whether two slots describe the same interval.
func SameSlot(a, b TimeSlot) bool {
	return a.Date == b.Date && a.Time == b.Time && a.Start == b.Start && a.Duration == b.Duration
}
