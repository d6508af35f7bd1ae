// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"strings"
)

// Booking statuses reported by the calendar API.
const (
	BookingStatusConfirmed = "confirmed"
)

// Attendee is a person invited to a booking.
type Attendee struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,booking_email"`
}

// Recurrence is accepted on the wire for forward compatibility. The client
// never populates or interprets it.
type Recurrence struct {
	Frequency string `json:"frequency"`
	Until     string `json:"until"`
}

// BookingRequest is the outbound booking intent.
type BookingRequest struct {
	Title        string      `json:"title" validate:"required"`
	Date         string      `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string      `json:"start_time" validate:"required,clock"`
	Duration     int         `json:"duration" validate:"gt=0"`
	Attendees    []Attendee  `json:"attendees" validate:"required,min=1,dive"`
	Platform     string      `json:"platform" validate:"required"`
	Recurring    *Recurrence `json:"recurring,omitempty"`
	Timezone     string      `json:"timezone,omitempty"`
	BufferBefore *int        `json:"buffer_before,omitempty" validate:"omitempty,gte=0"`
	BufferAfter  *int        `json:"buffer_after,omitempty" validate:"omitempty,gte=0"`
	Notes        string      `json:"notes,omitempty"`
}

// Booking is a server-confirmed booking.
type Booking struct {
	BookingUID   string     `json:"booking_uid"`
	Title        string     `json:"title"`
	Date         string     `json:"date"`
	StartTime    string     `json:"start_time"`
	Duration     int        `json:"duration"`
	Status       string     `json:"status"`
	Platform     string     `json:"platform"`
	MeetingLink  string     `json:"meeting_link"`
	Attendees    []Attendee `json:"attendees"`
	Notes        string     `json:"notes"`
	BufferBefore int        `json:"buffer_before"`
	BufferAfter  int        `json:"buffer_after"`
	CreatedAt    string     `json:"created_at"`
	Timezone     string     `json:"timezone"`
}

// BookingData is the data section of a booking response.
type BookingData struct {
	Bookings []Booking `json:"bookings"`
}

// BookingResponse is the envelope returned by the book endpoint.
type BookingResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       BookingData `json:"data"`
	StatusCode int         `json:"status_code"`
}

// First returns the first confirmed booking of the response, if any.
func (r *BookingResponse) First() (Booking, bool) {
	if r == nil || len(r.Data.Bookings) == 0 {
		return Booking{}, false
	}
	return r.Data.Bookings[0], true
}

// BookingFormInputs is the raw visitor input collected by the booking form.
type BookingFormInputs struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,booking_email"`
	Notes string `json:"notes"`
}

// Normalize trims surrounding whitespace from every field.
func (f BookingFormInputs) Normalize() BookingFormInputs {
	return BookingFormInputs{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
		Notes: strings.TrimSpace(f.Notes),
	}
}

// BookingTitle is the title given to bookings made from the booking page.
func BookingTitle(attendeeName string) string {
	return fmt.Sprintf("Meeting with %s", attendeeName)
}

// NewBookingRequest builds the request for booking slot with the visitor's form input.
func NewBookingRequest(slot TimeSlot, form BookingFormInputs, platform, timezone string) BookingRequest {
	return BookingRequest{
		Title:     BookingTitle(form.Name),
		Date:      slot.Date,
		StartTime: slot.Time,
		Duration:  slot.Duration,
		Attendees: []Attendee{
			{Name: form.Name, Email: form.Email},
		},
		Platform: platform,
		Timezone: timezone,
		Notes:    form.Notes,
	}
}
