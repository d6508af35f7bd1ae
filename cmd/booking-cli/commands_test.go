// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/service"
)

var cliNow = time.Date(2024, time.June, 9, 18, 0, 0, 0, time.UTC)

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, handler http.Handler) (*app, *syncBuffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	out := &syncBuffer{}
	return &app{
		env: environment{
			Service: service.ServiceConfig{
				Retry:           service.RetryPolicy{InitialBackoff: time.Millisecond},
				OverviewWorkers: 2,
			},
		},
		client: calendar.NewClient(calendar.Config{BaseURL: server.URL, Timeout: 5 * time.Second}),
		out:    out,
		now:    func() time.Time { return cliNow },
	}, out
}

func newFixtureApp(t *testing.T) (*app, *syncBuffer, *calendar.FixtureClient) {
	t.Helper()
	fixture := calendar.NewFixtureClient(calendar.FixtureConfig{Now: func() time.Time { return cliNow }})
	a, out := newTestApp(t, calendar.NewHandler(fixture, calendar.ServerConfig{}))
	return a, out, fixture
}

func TestApp_Slots(t *testing.T) {
	a, out, _ := newFixtureApp(t)

	err := a.run(context.Background(), commandSlots, commandOptions{Username: "kunal", Date: "2024-06-10"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "* Availability loaded: 12 time slots available on Monday, June 10, 2024")
	assert.Contains(t, text, "Available times for Monday, June 10, 2024 with kunal (America/New_York)")
	assert.Contains(t, text, "9:00 AM, 9:30 AM, 10:30 AM, 11:00 AM, 11:30 AM\n")
	assert.Contains(t, text, "12:30 PM, 1:00 PM, 1:30 PM, 2:30 PM, 3:00 PM, 3:30 PM, 4:30 PM\n")
	assert.NotContains(t, text, "Evening:")
}

func TestApp_Slots_Errored(t *testing.T) {
	a, out := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))

	err := a.run(context.Background(), commandSlots, commandOptions{Username: "kunal", Date: "2024-06-10"})
	require.Error(t, err)
	assert.Equal(t, "Error 500: Internal Server Error", domain.Reason(err))

	text := out.String()
	assert.Contains(t, text, "! Error loading calendar: Error 500: Internal Server Error")
	assert.Contains(t, text, "Error loading calendar: Error 500: Internal Server Error\n")
}

func TestApp_Book(t *testing.T) {
	a, out, fixture := newFixtureApp(t)
	ctx := context.Background()

	err := a.run(ctx, commandBook, commandOptions{
		Username: "kunal",
		Date:     "2024-06-10",
		Time:     "09:30",
		Name:     "Ann",
		Email:    "ann@x.com",
		Notes:    "Intro call",
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Booking Confirmed!")
	assert.Contains(t, text, "Monday, June 10, 2024")
	assert.Contains(t, text, "9:30 AM (30 minutes)")
	assert.Contains(t, text, "Platform:     zoom")
	assert.Contains(t, text, "* Booking confirmed: Your meeting is scheduled for Monday, June 10, 2024 at 9:30 AM.")
	assert.Contains(t, text, "* Availability loaded: 11 time slots available on Monday, June 10, 2024")

	bookings := fixture.Bookings("kunal")
	require.Len(t, bookings, 1)
	assert.Equal(t, "Meeting with Ann", bookings[0].Title)
	assert.Equal(t, "Intro call", bookings[0].Notes)

	after, afterOut := newTestApp(t, calendar.NewHandler(fixture, calendar.ServerConfig{}))
	require.NoError(t, after.run(ctx, commandSlots, commandOptions{Username: "kunal", Date: "2024-06-10"}))
	assert.NotContains(t, afterOut.String(), "9:30 AM")
}

func TestApp_Book_WritesInvitation(t *testing.T) {
	a, out, _ := newFixtureApp(t)
	path := filepath.Join(t.TempDir(), "booking.ics")

	err := a.run(context.Background(), commandBook, commandOptions{
		Username: "kunal",
		Date:     "2024-06-10",
		Time:     "13:00",
		Name:     "Ann",
		Email:    "ann@x.com",
		ICSPath:  path,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Calendar invitation written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	invitation := strings.ReplaceAll(string(data), "\r\n ", "")
	assert.Contains(t, invitation, "SUMMARY:Meeting with Ann\r\n")
	assert.Contains(t, invitation, "DTSTART;TZID=America/New_York:20240610T130000\r\n")
	assert.Contains(t, invitation, "CN=Ann:mailto:ann@x.com\r\n")
}

func TestApp_Book_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		opts    commandOptions
		checkFn func(t *testing.T, err error)
	}{
		{
			name: "slot not offered",
			opts: commandOptions{Username: "kunal", Date: "2024-06-10", Time: "10:00", Name: "Ann", Email: "ann@x.com"},
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrSlotNotOffered)
			},
		},
		{
			name: "invalid email",
			opts: commandOptions{Username: "kunal", Date: "2024-06-10", Time: "09:00", Name: "Ann", Email: "ann@x"},
			checkFn: func(t *testing.T, err error) {
				assert.True(t, domain.IsValidationError(err))
			},
		},
		{
			name: "invalid date",
			opts: commandOptions{Username: "kunal", Date: "June 10", Time: "09:00", Name: "Ann", Email: "ann@x.com"},
			checkFn: func(t *testing.T, err error) {
				assert.True(t, domain.IsValidationError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, fixture := newFixtureApp(t)
			err := a.run(context.Background(), commandBook, tt.opts)
			require.Error(t, err)
			tt.checkFn(t, err)
			assert.Empty(t, fixture.Bookings("kunal"))
		})
	}
}

func TestApp_Book_SlotAlreadyTaken(t *testing.T) {
	a, out, fixture := newFixtureApp(t)
	opts := commandOptions{Username: "kunal", Date: "2024-06-10", Time: "09:00", Name: "Ann", Email: "ann@x.com"}
	require.NoError(t, a.run(context.Background(), commandBook, opts))

	opts.Name = "Bob"
	opts.Email = "bob@x.com"
	err := a.run(context.Background(), commandBook, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSlotNotOffered, "the refreshed list no longer offers the slot")
	assert.Contains(t, out.String(), "Available times for Monday, June 10, 2024")
	assert.Len(t, fixture.Bookings("kunal"), 1)
}

func TestApp_Week(t *testing.T) {
	a, out, _ := newFixtureApp(t)

	err := a.run(context.Background(), commandWeek, commandOptions{Username: "kunal", Date: "2024-06-10", Days: 3})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Availability for kunal\n")
	assert.Contains(t, text, "Mon, Jun 10  12 slots (Morning 5, Afternoon 7)")
	assert.Contains(t, text, "Tue, Jun 11")
	assert.Contains(t, text, "Wed, Jun 12")
	assert.NotContains(t, text, "Thu, Jun 13")
}

func TestApp_Week_AllDatesFail(t *testing.T) {
	a, out := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := a.run(context.Background(), commandWeek, commandOptions{Username: "kunal", Date: "2024-06-10", Days: 2})
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "error: Error 503: Service Unavailable"))
}

func TestApp_Week_InvalidFrom(t *testing.T) {
	a, _, _ := newFixtureApp(t)
	err := a.run(context.Background(), commandWeek, commandOptions{Username: "kunal", Date: "next week"})
	assert.True(t, domain.IsValidationError(err))
}

func TestApp_Watch(t *testing.T) {
	a, out, fixture := newFixtureApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.run(ctx, commandWatch, commandOptions{Username: "kunal", Date: "2024-06-10", Schedule: "@every 1s"})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "12 time slots available")
	}, 5*time.Second, 10*time.Millisecond)

	// A booking made elsewhere shows up on the next scheduled refresh.
	_, err := fixture.SubmitBooking(ctx, "kunal", models.BookingRequest{
		Title:     "Meeting with Bob",
		Date:      "2024-06-10",
		StartTime: "09:00",
		Duration:  30,
		Attendees: []models.Attendee{{Name: "Bob", Email: "bob@x.com"}},
		Platform:  models.PlatformZoom,
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "11 time slots available")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	assert.Contains(t, out.String(), "Available times for Monday, June 10, 2024 with kunal")
}

func TestApp_Watch_InvalidSchedule(t *testing.T) {
	a, _, _ := newFixtureApp(t)
	err := a.run(context.Background(), commandWatch, commandOptions{Username: "kunal", Date: "2024-06-10", Schedule: "every so often"})
	assert.True(t, domain.IsValidationError(err))
}

func TestApp_UnknownCommand(t *testing.T) {
	a, _, _ := newFixtureApp(t)
	assert.ErrorIs(t, a.run(context.Background(), "cancel", commandOptions{}), errUsage)
}
