// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/akamensky/base58"
	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// Fixture defaults
const (
	DefaultFixtureTimezone   = "America/New_York"
	DefaultFixtureStartHour  = 9
	DefaultFixtureEndHour    = 17
	DefaultFixtureBufferTime = 15
	// DefaultFixtureBusyEvery withholds every 4th slot so that a day never looks fully open.
	DefaultFixtureBusyEvery = 4
)

// Messages returned by the fixture backend
const (
	MessageAvailabilityFetched = "Availability fetched successfully."
	MessageMeetingBooked       = "Meeting booked successfully."
	MessageSlotUnavailable     = "Slot no longer available"
)

// FixtureConfig holds the configuration for the in-memory calendar backend
type FixtureConfig struct {
	// Timezone is the host timezone the wall-clock slot times are expressed in.
	// An unknown zone falls back to UTC.
	Timezone string
	// StartHour and EndHour bound the working day (EndHour exclusive).
	StartHour int
	EndHour   int
	// SlotMinutes is the length of every slot.
	SlotMinutes int
	// BufferTime is reported as the host's buffer in minutes.
	BufferTime int
	// BusyEvery withholds one slot in every BusyEvery, offset by the day of the year.
	// Zero uses DefaultFixtureBusyEvery and a negative value offers every slot.
	BusyEvery int
	// Now is used for created_at timestamps.
	Now func() time.Time
}

// FixtureClient is a deterministic in-memory calendar backend. It implements
// domain.AvailabilityClient for tests and local development, and backs the
// fixture HTTP server.
type FixtureClient struct {
	config   FixtureConfig
	location *time.Location

	mu     sync.Mutex
	booked map[string]models.Booking
}

// Ensure that FixtureClient implements domain.AvailabilityClient
var _ domain.AvailabilityClient = (*FixtureClient)(nil)

// NewFixtureClient creates a new in-memory calendar backend
func NewFixtureClient(config FixtureConfig) *FixtureClient {
	if config.Timezone == "" {
		config.Timezone = DefaultFixtureTimezone
	}
	if config.StartHour == 0 && config.EndHour == 0 {
		config.StartHour = DefaultFixtureStartHour
		config.EndHour = DefaultFixtureEndHour
	}
	if config.SlotMinutes <= 0 {
		config.SlotMinutes = constants.DefaultSlotDurationMinutes
	}
	if config.BufferTime == 0 {
		config.BufferTime = DefaultFixtureBufferTime
	}
	if config.BusyEvery == 0 {
		config.BusyEvery = DefaultFixtureBusyEvery
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		slog.Warn("unknown fixture timezone, falling back to UTC",
			"timezone", config.Timezone,
			logging.ErrKey, err,
		)
		location = time.UTC
		config.Timezone = time.UTC.String()
	}

	return &FixtureClient{
		config:   config,
		location: location,
		booked:   make(map[string]models.Booking),
	}
}

// GetAvailability returns the generated slots for the date minus the booked ones
func (f *FixtureClient) GetAvailability(ctx context.Context, username, date string) (*models.AvailabilityResponse, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewTransportError("calendar service request failed", err)
	}

	slots, err := f.daySlots(date)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	available := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if _, taken := f.booked[bookingKey(username, slot.Date, slot.Time)]; !taken {
			available = append(available, slot)
		}
	}
	f.mu.Unlock()

	return &models.AvailabilityResponse{
		Success: true,
		Message: MessageAvailabilityFetched,
		Data: models.Availability{
			Availability: available,
			CalendarInfo: models.CalendarInfo{
				DefaultDuration:  f.config.SlotMinutes,
				MeetingPlatforms: fixturePlatforms(),
				Timezone:         f.config.Timezone,
				BufferTime:       f.config.BufferTime,
			},
			User:       fixtureUser(username),
			BufferTime: f.config.BufferTime,
			Timezone:   f.config.Timezone,
		},
	}, nil
}

// SubmitBooking books an offered, free slot. Booking a withheld or already
// booked slot fails with a 409 request error.
func (f *FixtureClient) SubmitBooking(ctx context.Context, username string, request models.BookingRequest) (*models.BookingResponse, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if err := domain.ValidateBookingRequest(request); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewTransportError("calendar service request failed", err)
	}

	slots, err := f.daySlots(request.Date)
	if err != nil {
		return nil, err
	}
	offered := false
	for _, slot := range slots {
		if slot.Time == request.StartTime && slot.Duration == request.Duration {
			offered = true
			break
		}
	}
	if !offered {
		return nil, domain.NewRequestError(http.StatusConflict, MessageSlotUnavailable)
	}

	key := bookingKey(username, request.Date, request.StartTime)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.booked[key]; taken {
		return nil, domain.NewRequestError(http.StatusConflict, MessageSlotUnavailable)
	}

	booking := models.Booking{
		BookingUID:   newBookingUID(),
		Title:        request.Title,
		Date:         request.Date,
		StartTime:    request.StartTime,
		Duration:     request.Duration,
		Status:       models.BookingStatusConfirmed,
		Platform:     request.Platform,
		MeetingLink:  meetingLink(request.Platform),
		Attendees:    append([]models.Attendee(nil), request.Attendees...),
		Notes:        request.Notes,
		BufferBefore: utils.IntValue(request.BufferBefore),
		BufferAfter:  utils.IntValue(request.BufferAfter),
		CreatedAt:    f.config.Now().UTC().Format(time.RFC3339),
		Timezone:     utils.CoalesceString(request.Timezone, f.config.Timezone),
	}
	f.booked[key] = booking

	slog.DebugContext(ctx, "fixture booking created",
		"username", username,
		"booking_uid", booking.BookingUID,
		"date", booking.Date,
		"start_time", booking.StartTime,
	)

	return &models.BookingResponse{
		Success:    true,
		Message:    MessageMeetingBooked,
		Data:       models.BookingData{Bookings: []models.Booking{booking}},
		StatusCode: http.StatusCreated,
	}, nil
}

// Bookings returns the bookings made for a host, in no particular order.
func (f *FixtureClient) Bookings(username string) []models.Booking {
	prefix := username + "|"

	f.mu.Lock()
	defer f.mu.Unlock()
	bookings := make([]models.Booking, 0, len(f.booked))
	for key, booking := range f.booked {
		if strings.HasPrefix(key, prefix) {
			bookings = append(bookings, booking)
		}
	}
	return bookings
}

// daySlots generates the offered slots of a date, busy ones already withheld.
func (f *FixtureClient) daySlots(date string) ([]models.TimeSlot, error) {
	day, err := time.ParseInLocation(models.DateLayout, date, f.location)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("date %q must be formatted as YYYY-MM-DD", date), err)
	}

	step := time.Duration(f.config.SlotMinutes) * time.Minute
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), f.config.EndHour, 0, 0, 0, f.location)
	var slots []models.TimeSlot
	index := 0
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), f.config.StartHour, 0, 0, 0, f.location)
	for start := dayStart; !start.Add(step).After(dayEnd); start = start.Add(step) {
		busy := f.config.BusyEvery > 0 && (day.YearDay()+index)%f.config.BusyEvery == 0
		index++
		if busy {
			continue
		}
		slots = append(slots, models.TimeSlot{
			Time:     start.Format("15:04"),
			Date:     date,
			Start:    start.UTC().Format(time.RFC3339),
			End:      start.Add(step).UTC().Format(time.RFC3339),
			Duration: f.config.SlotMinutes,
		})
	}
	return slots, nil
}

func bookingKey(username, date, clock string) string {
	return username + "|" + date + "|" + clock
}

func newBookingUID() string {
	id := uuid.New()
	return "booking_" + base58.Encode(id[:])
}

func meetingLink(platform string) string {
	if platform == models.PlatformGoogleMeet {
		return "https://meet.google.com/generated_meeting_id"
	}
	return "https://zoom.us/j/generated_meeting_id"
}

func fixturePlatforms() []models.MeetingPlatform {
	return []models.MeetingPlatform{
		{Type: models.PlatformZoom, Available: true, Link: "https://zoom.us/j/example", Value: "Zoom Meeting"},
		{Type: models.PlatformGoogleMeet, Available: true, Link: "https://meet.google.com/example", Value: "Google Meet"},
	}
}

func fixtureUser(username string) models.UserInfo {
	return models.UserInfo{
		Username:         username,
		Email:            strings.ToLower(username) + "@example.com",
		ProfilePic:       utils.StringPtr("https://avatars.githubusercontent.com/u/12345678?v=4"),
		UserType:         "premium",
		OrganisationName: utils.StringPtr("Acme Inc."),
		OrganisationURL:  utils.StringPtr("https://acme-inc.example.com"),
		LinkedinURL:      utils.StringPtr("https://linkedin.com/in/" + strings.ToLower(username)),
		Platforms:        []string{models.PlatformZoom, models.PlatformGoogleMeet},
	}
}
