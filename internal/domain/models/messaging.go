// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NotificationKind identifies the workflow event a notification reports.
type NotificationKind string

const (
	NotificationAvailabilityLoaded NotificationKind = "availability_loaded"
	NotificationAvailabilityFailed NotificationKind = "availability_failed"
	NotificationBookingConfirmed   NotificationKind = "booking_confirmed"
	NotificationBookingFailed      NotificationKind = "booking_failed"
)

// NotificationVariant mirrors the visual weight the presentation surface should use.
type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// NATS subjects that the booking client publishes notifications on.
const (
	// NotificationSubjectPrefix is prefixed to the notification kind.
	// The subject is of the form: lfx.booking-client.<kind>
	NotificationSubjectPrefix = "lfx.booking-client."

	// BookingConfirmedSubject is the subject for confirmed bookings.
	// The subject is of the form: lfx.booking-client.booking_confirmed
	BookingConfirmedSubject = NotificationSubjectPrefix + string(NotificationBookingConfirmed)
)

// Notification is a user-visible, non-blocking message emitted by the booking workflow.
type Notification struct {
	Kind        NotificationKind    `json:"kind"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Variant     NotificationVariant `json:"variant"`
	SessionID   string              `json:"session_id"`
	Username    string              `json:"username"`
	Date        string              `json:"date,omitempty"`
	BookingUID  string              `json:"booking_uid,omitempty"`
	StatusCode  int                 `json:"status_code,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// Subject returns the NATS subject the notification is published on.
func (n Notification) Subject() string {
	return NotificationSubjectPrefix + string(n.Kind)
}
