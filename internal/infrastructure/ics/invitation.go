// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package ics renders confirmed bookings as iCalendar (RFC 5545) invitations
// a visitor can import into their own calendar.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// ICS constants for consistent values across all generated ICS files
const (
	ProdID        = "-//Linux Foundation//LFX Booking Client//EN"
	icalVersion   = "2.0"
	icalScale     = "GREGORIAN"
	maxLineLength = 75
	uidDomain     = "booking.lfx.dev"

	localLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"
)

// utf8ContinuationMask isolates the top two bits of a byte; continuation bytes are 10xxxxxx.
const (
	utf8ContinuationMask   = 0xC0
	utf8ContinuationPrefix = 0x80
)

// Organizer is the host the booking was made with.
type Organizer struct {
	Name  string
	Email string
}

// InvitationParams holds everything needed to render one booking.
type InvitationParams struct {
	Booking   models.Booking
	Organizer Organizer
	// Stamp is written as DTSTAMP. Zero uses the current time.
	Stamp time.Time
}

// GenerateBookingInvitation renders a confirmed booking as a VCALENDAR with a
// single VEVENT. Times are written in the booking's timezone when it has one,
// and in UTC otherwise.
func GenerateBookingInvitation(params InvitationParams) (string, error) {
	booking := params.Booking
	if booking.BookingUID == "" {
		return "", domain.NewValidationError("booking uid is required")
	}
	if booking.Duration <= 0 {
		return "", domain.NewValidationError("booking duration must be positive")
	}

	loc := time.UTC
	if booking.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(booking.Timezone); err != nil {
			return "", domain.NewValidationError(fmt.Sprintf("invalid timezone %q", booking.Timezone), err)
		}
	}

	start, err := time.ParseInLocation(models.DateLayout+" 15:04", booking.Date+" "+booking.StartTime, loc)
	if err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking start %s %s", booking.Date, booking.StartTime), err)
	}
	end := start.Add(time.Duration(booking.Duration) * time.Minute)

	stamp := params.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(foldLine(s, maxLineLength))
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:" + icalVersion)
	line("PRODID:" + ProdID)
	line("CALSCALE:" + icalScale)
	line("METHOD:PUBLISH")

	line("BEGIN:VEVENT")
	line(fmt.Sprintf("UID:%s@%s", booking.BookingUID, uidDomain))
	line("DTSTAMP:" + stamp.UTC().Format(utcLayout))
	if booking.Timezone != "" {
		line(fmt.Sprintf("DTSTART;TZID=%s:%s", booking.Timezone, start.Format(localLayout)))
		line(fmt.Sprintf("DTEND;TZID=%s:%s", booking.Timezone, end.Format(localLayout)))
	} else {
		line("DTSTART:" + start.Format(utcLayout))
		line("DTEND:" + end.Format(utcLayout))
	}
	line("SUMMARY:" + escapeText(booking.Title))
	if description := buildDescription(booking); description != "" {
		line("DESCRIPTION:" + escapeText(description))
	}
	if booking.MeetingLink != "" {
		line("LOCATION:" + escapeText(booking.MeetingLink))
		line("URL:" + booking.MeetingLink)
	}
	if params.Organizer.Email != "" {
		line(fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s", quoteParam(params.Organizer.Name), params.Organizer.Email))
	}
	for _, attendee := range booking.Attendees {
		line(fmt.Sprintf("ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=ACCEPTED;CN=%s:mailto:%s",
			quoteParam(attendee.Name), attendee.Email))
	}
	line("STATUS:CONFIRMED")
	line("TRANSP:OPAQUE")
	line("SEQUENCE:0")

	line("BEGIN:VALARM")
	line("TRIGGER:-PT10M")
	line("ACTION:DISPLAY")
	line("DESCRIPTION:" + escapeText("Reminder: "+booking.Title))
	line("END:VALARM")

	line("END:VEVENT")
	line("END:VCALENDAR")

	return b.String(), nil
}

func buildDescription(booking models.Booking) string {
	var parts []string
	if booking.Notes != "" {
		parts = append(parts, booking.Notes)
	}
	if booking.Platform != "" {
		parts = append(parts, "Platform: "+booking.Platform)
	}
	if booking.MeetingLink != "" {
		parts = append(parts, "Join: "+booking.MeetingLink)
	}
	parts = append(parts, "Booking ID: "+booking.BookingUID)
	return strings.Join(parts, "\n")
}

// escapeText escapes special characters in ICS text values.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, ";", "\\;")
	return text
}

// quoteParam quotes a parameter value when it contains characters that would
// end the parameter.
func quoteParam(value string) string {
	value = strings.ReplaceAll(value, `"`, "'")
	if strings.ContainsAny(value, ",;:") {
		return `"` + value + `"`
	}
	return value
}

// foldLine folds a content line to at most maxLength octets per physical line,
// never splitting a UTF-8 sequence. Continuation lines start with a space.
func foldLine(line string, maxLength int) string {
	if len(line) <= maxLength {
		return line
	}

	var folded strings.Builder
	remaining := line
	limit := maxLength
	for len(remaining) > limit {
		cut := limit
		for cut > 0 && remaining[cut]&utf8ContinuationMask == utf8ContinuationPrefix {
			cut--
		}
		folded.WriteString(remaining[:cut])
		folded.WriteString("\r\n ")
		remaining = remaining[cut:]
		// The leading space counts toward the next line's length.
		limit = maxLength - 1
	}
	folded.WriteString(remaining)
	return folded.String()
}
