// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set(constants.ContentTypeHeader, "application/json; charset=utf-8")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func sampleAvailability() models.AvailabilityResponse {
	return models.AvailabilityResponse{
		Success: true,
		Message: "ok",
		Data: models.Availability{
			Availability: []models.TimeSlot{
				{Time: "09:00", Date: "2024-06-10", Start: "2024-06-10T13:00:00Z", End: "2024-06-10T13:30:00Z", Duration: 30},
				{Time: "13:00", Date: "2024-06-10", Start: "2024-06-10T17:00:00Z", End: "2024-06-10T17:30:00Z", Duration: 30},
			},
			CalendarInfo: models.CalendarInfo{
				DefaultDuration:  30,
				MeetingPlatforms: []models.MeetingPlatform{{Type: models.PlatformZoom, Available: true}},
				Timezone:         "America/New_York",
				BufferTime:       15,
			},
			User:     models.UserInfo{Username: "kunal", Email: "kunal@example.com", UserType: "free"},
			Timezone: "America/New_York",
		},
	}
}

func sampleBookingRequest() models.BookingRequest {
	return models.BookingRequest{
		Title:     "Meeting with Ann",
		Date:      "2024-06-10",
		StartTime: "09:00",
		Duration:  30,
		Attendees: []models.Attendee{{Name: "Ann", Email: "ann@x.com"}},
		Platform:  models.PlatformZoom,
		Notes:     "hello",
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://calendar.local/"})
	assert.Equal(t, "http://calendar.local", c.config.BaseURL)
	assert.Equal(t, constants.DefaultClientTimeout, c.config.Timeout)
	assert.Equal(t, constants.DefaultClientTimeout, c.httpClient.Timeout)

	c = NewClient(Config{})
	assert.Equal(t, constants.DefaultCalendarAPIURL, c.config.BaseURL)
}

func TestClient_GetAvailability(t *testing.T) {
	var gotPath, gotDate, gotRequestID, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDate = r.URL.Query().Get("date")
		gotRequestID = r.Header.Get(constants.RequestIDHeader)
		gotAccept = r.Header.Get(constants.AcceptHeader)
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(t, w, http.StatusOK, sampleAvailability())
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	resp, err := client.GetAvailability(context.Background(), "kunal", "2024-06-10")
	require.NoError(t, err)

	assert.Equal(t, "/api/calendar/v2/public/kunal/availability", gotPath)
	assert.Equal(t, "2024-06-10", gotDate)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, constants.ContentTypeJSON, gotAccept)

	require.Len(t, resp.Data.Availability, 2)
	assert.Equal(t, "09:00", resp.Data.Availability[0].Time)
	assert.Equal(t, models.PlatformZoom, resp.Data.CalendarInfo.PreferredPlatform())
}

func TestClient_GetAvailability_EmptySlotListIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := sampleAvailability()
		body.Data.Availability = []models.TimeSlot{}
		writeJSON(t, w, http.StatusOK, body)
	}))
	defer server.Close()

	resp, err := NewClient(Config{BaseURL: server.URL}).GetAvailability(context.Background(), "kunal", "2024-06-10")
	require.NoError(t, err)
	assert.Empty(t, resp.Data.Availability)
}

func TestClient_GetAvailability_InvalidInputMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, sampleAvailability())
	}))
	defer server.Close()
	client := NewClient(Config{BaseURL: server.URL})

	tests := []struct {
		name     string
		username string
		date     string
	}{
		{name: "empty username", username: "", date: "2024-06-10"},
		{name: "blank username", username: "  ", date: "2024-06-10"},
		{name: "empty date", username: "kunal", date: ""},
		{name: "wrong date layout", username: "kunal", date: "10/06/2024"},
		{name: "impossible date", username: "kunal", date: "2024-13-40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetAvailability(context.Background(), tt.username, tt.date)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_GetAvailability_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "server error without structured body",
			status:      http.StatusInternalServerError,
			contentType: "text/html",
			body:        "<html>oops</html>",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Error 500: Internal Server Error",
		},
		{
			name:        "structured error body",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"message":"User not found"}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name:        "structured body without message",
			status:      http.StatusBadGateway,
			contentType: "application/json",
			body:        `{"error":true}`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Error 502: Bad Gateway",
		},
		{
			name:        "success status with html body",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        "<!doctype html><html></html>",
			wantStatus:  http.StatusOK,
			wantMessage: `unexpected response content type "text/html; charset=utf-8"`,
		},
		{
			name:        "success status with malformed json",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"success": tru`,
			wantStatus:  http.StatusOK,
			wantMessage: "failed to parse response",
		},
		{
			name:        "envelope reports failure",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"success":false,"message":"Calendar disabled"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Calendar disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(constants.ContentTypeHeader, tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{BaseURL: server.URL}).GetAvailability(context.Background(), "kunal", "2024-06-10")
			require.Error(t, err)
			assert.True(t, domain.IsRequestError(err), "expected request error, got %v", err)
			assert.Equal(t, tt.wantStatus, domain.GetStatusCode(err))
			assert.Equal(t, tt.wantMessage, domain.Reason(err))
		})
	}
}

func TestClient_GetAvailability_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := NewClient(Config{BaseURL: baseURL, Timeout: 2 * time.Second}).GetAvailability(context.Background(), "kunal", "2024-06-10")
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err), "expected transport error, got %v", err)
	assert.Zero(t, domain.GetStatusCode(err))
}

func TestClient_GetAvailability_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, sampleAvailability())
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{BaseURL: server.URL}).GetAvailability(ctx, "kunal", "2024-06-10")
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SubmitBooking(t *testing.T) {
	var received models.BookingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/calendar/v2/public/kunal/book/", r.URL.Path)
		assert.Equal(t, constants.ContentTypeJSON, r.Header.Get(constants.ContentTypeHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		writeJSON(t, w, http.StatusCreated, models.BookingResponse{
			Success:    true,
			Message:    "Meeting booked successfully.",
			StatusCode: http.StatusCreated,
			Data: models.BookingData{Bookings: []models.Booking{{
				BookingUID: "booking_abc",
				Title:      received.Title,
				Date:       received.Date,
				StartTime:  received.StartTime,
				Duration:   received.Duration,
				Attendees:  received.Attendees,
				Notes:      received.Notes,
				Status:     models.BookingStatusConfirmed,
				Platform:   received.Platform,
			}}},
		})
	}))
	defer server.Close()

	req := sampleBookingRequest()
	resp, err := NewClient(Config{BaseURL: server.URL}).SubmitBooking(context.Background(), "kunal", req)
	require.NoError(t, err)

	assert.Equal(t, req, received)
	booking, ok := resp.First()
	require.True(t, ok)
	assert.Equal(t, "booking_abc", booking.BookingUID)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestClient_SubmitBooking_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]any{"success": false, "message": "Slot no longer available"})
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).SubmitBooking(context.Background(), "kunal", sampleBookingRequest())
	require.Error(t, err)
	assert.True(t, domain.IsRequestError(err))
	assert.Equal(t, http.StatusConflict, domain.GetStatusCode(err))
	assert.Equal(t, "Slot no longer available", domain.Reason(err))
}

func TestClient_SubmitBooking_NoBookingsIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusCreated, models.BookingResponse{Success: true, StatusCode: http.StatusCreated})
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).SubmitBooking(context.Background(), "kunal", sampleBookingRequest())
	require.Error(t, err)
	assert.True(t, domain.IsRequestError(err))
	assert.Equal(t, "booking response contained no bookings", domain.Reason(err))
}

func TestClient_SubmitBooking_InvalidRequestMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()
	client := NewClient(Config{BaseURL: server.URL})

	tests := []struct {
		name   string
		mutate func(*models.BookingRequest)
	}{
		{name: "no attendees", mutate: func(r *models.BookingRequest) { r.Attendees = []models.Attendee{} }},
		{name: "nil attendees", mutate: func(r *models.BookingRequest) { r.Attendees = nil }},
		{name: "attendee without name", mutate: func(r *models.BookingRequest) { r.Attendees[0].Name = "" }},
		{name: "malformed email", mutate: func(r *models.BookingRequest) { r.Attendees[0].Email = "ann@x" }},
		{name: "zero duration", mutate: func(r *models.BookingRequest) { r.Duration = 0 }},
		{name: "bad start time", mutate: func(r *models.BookingRequest) { r.StartTime = "9am" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleBookingRequest()
			tt.mutate(&req)
			_, err := client.SubmitBooking(context.Background(), "kunal", req)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestIsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"text/plain; charset=utf-8", false},
		{"", false},
		{";;", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isJSON(tt.contentType), tt.contentType)
	}
}
