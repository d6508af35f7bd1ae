// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ann@x.com", true},
		{"Ann.Smith+cal@Example.CO.uk", true},
		{"ann@x", false},
		{"ann@x.c", false},
		{"ann x@x.com", false},
		{"@x.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-06-10"))

	for _, bad := range []string{"", "2024-6-10", "06/10/2024", "2024-02-30"} {
		err := ValidateDate(bad)
		require.Error(t, err, bad)
		assert.True(t, IsValidationError(err))
	}
}

func TestValidateBookingForm(t *testing.T) {
	tests := []struct {
		name    string
		form    models.BookingFormInputs
		wantErr string
	}{
		{
			name: "valid without notes",
			form: models.BookingFormInputs{Name: "Ann", Email: "ann@x.com"},
		},
		{
			name:    "missing name",
			form:    models.BookingFormInputs{Email: "ann@x.com"},
			wantErr: "name: is required",
		},
		{
			name:    "invalid email",
			form:    models.BookingFormInputs{Name: "Ann", Email: "ann@x"},
			wantErr: "email: invalid email address",
		},
		{
			name:    "both missing",
			form:    models.BookingFormInputs{},
			wantErr: "name: is required; email: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookingForm(tt.form)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantErr, Reason(err))
		})
	}
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		Title:     "Meeting with Ann",
		Date:      "2024-06-10",
		StartTime: "09:30",
		Duration:  30,
		Attendees: []models.Attendee{{Name: "Ann", Email: "ann@x.com"}},
		Platform:  models.PlatformZoom,
	}
}

func TestValidateBookingRequest(t *testing.T) {
	negative := -5

	tests := []struct {
		name    string
		modify  func(r *models.BookingRequest)
		wantErr string
	}{
		{name: "valid", modify: func(*models.BookingRequest) {}},
		{
			name:    "no attendees",
			modify:  func(r *models.BookingRequest) { r.Attendees = nil },
			wantErr: "attendees: is required",
		},
		{
			name:    "attendee email",
			modify:  func(r *models.BookingRequest) { r.Attendees[0].Email = "nope" },
			wantErr: "attendees[0].email: invalid email address",
		},
		{
			name:    "zero duration",
			modify:  func(r *models.BookingRequest) { r.Duration = 0 },
			wantErr: "duration: must be greater than 0",
		},
		{
			name:    "bad start time",
			modify:  func(r *models.BookingRequest) { r.StartTime = "9:30" },
			wantErr: "start_time: must be formatted as HH:MM",
		},
		{
			name:    "bad date",
			modify:  func(r *models.BookingRequest) { r.Date = "10/06/2024" },
			wantErr: "date: must match layout 2006-01-02",
		},
		{
			name:    "negative buffer",
			modify:  func(r *models.BookingRequest) { r.BufferBefore = &negative },
			wantErr: "buffer_before: must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)
			err := ValidateBookingRequest(req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantErr, Reason(err))
		})
	}
}

func TestValidateTimeSlot(t *testing.T) {
	slot := models.TimeSlot{
		Time:     "09:00",
		Date:     "2024-06-10",
		Start:    "2024-06-10T13:00:00Z",
		End:      "2024-06-10T13:30:00Z",
		Duration: 30,
	}
	assert.NoError(t, ValidateTimeSlot(slot))

	offset := slot
	offset.Start = "2024-06-10T09:00:00-04:00"
	offset.End = "2024-06-10T09:30:00-04:00"
	assert.NoError(t, ValidateTimeSlot(offset))

	mismatched := slot
	mismatched.End = "2024-06-10T14:00:00Z"
	err := ValidateTimeSlot(mismatched)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	missing := slot
	missing.Start = ""
	assert.True(t, IsValidationError(ValidateTimeSlot(missing)))
}
