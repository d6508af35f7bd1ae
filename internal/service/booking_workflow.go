// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// tracerName is the instrumentation name for the service package.
const tracerName = "github.com/linuxfoundation/lfx-v2-booking-client/internal/service"

// AvailabilityState is the availability half of the workflow state.
type AvailabilityState string

const (
	AvailabilityIdle    AvailabilityState = "idle"
	AvailabilityLoading AvailabilityState = "loading"
	AvailabilityLoaded  AvailabilityState = "loaded"
	AvailabilityErrored AvailabilityState = "errored"
)

// BookingState is the booking half of the workflow state. It changes
// independently of AvailabilityState.
type BookingState string

const (
	BookingNoSelection      BookingState = "no_selection"
	BookingSlotSelected     BookingState = "slot_selected"
	BookingSubmitting       BookingState = "submitting"
	BookingConfirmed        BookingState = "confirmed"
	BookingSubmissionFailed BookingState = "submission_failed"
)

// WorkflowState is a point-in-time copy of a workflow's state for the presentation surface.
type WorkflowState struct {
	SessionID string
	Username  string

	Availability AvailabilityState
	// Date is the most recently requested date.
	Date          string
	Slots         []models.TimeSlot
	SlotsByPeriod map[models.Period][]models.TimeSlot
	CalendarInfo  models.CalendarInfo
	User          models.UserInfo
	Timezone      string
	// AvailabilityError is the reason shown while Errored.
	AvailabilityError string
	// FetchAttempts counts the attempts made for the current date, retries included.
	FetchAttempts int

	Booking      BookingState
	SelectedSlot *models.TimeSlot
	// Form is the input being submitted while Submitting.
	Form *models.BookingFormInputs
	// Confirmed is the booking returned by the last successful submission.
	Confirmed *models.Booking
	// SubmissionError is the reason shown while SubmissionFailed.
	SubmissionError string
}

// Option configures a BookingWorkflow.
type Option func(*BookingWorkflow)

// WithNotifier sets where notifications are emitted.
func WithNotifier(notifier domain.Notifier) Option {
	return func(w *BookingWorkflow) {
		if notifier != nil {
			w.notifier = notifier
		}
	}
}

// WithRetryPolicy sets the availability retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(w *BookingWorkflow) {
		w.retry = policy.withDefaults()
	}
}

// WithClock sets the clock used for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *BookingWorkflow) {
		if now != nil {
			w.now = now
		}
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(sessionID string) Option {
	return func(w *BookingWorkflow) {
		if sessionID != "" {
			w.sessionID = sessionID
		}
	}
}

// BookingWorkflow drives one visitor session on one host's booking page: it
// loads availability for the selected date, tracks the selected slot and
// submits bookings.
//
// Availability fetches run in the background. Each fetch is tagged when it is
// issued and its result is applied only if no newer fetch was issued since.
// Submissions are synchronous and at most one is outstanding at a time.
type BookingWorkflow struct {
	client    domain.AvailabilityClient
	notifier  domain.Notifier
	retry     RetryPolicy
	now       func() time.Time
	username  string
	sessionID string

	fetches sync.WaitGroup

	mu sync.Mutex
	// seq tags fetches; only the fetch carrying the latest tag may change state.
	seq   uint64
	state WorkflowState
}

// NewBookingWorkflow creates a workflow for the host's booking page. An empty
// username is the "user not found" page state and returns domain.ErrUserNotFound.
func NewBookingWorkflow(username string, client domain.AvailabilityClient, opts ...Option) (*BookingWorkflow, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUserNotFound
	}
	if client == nil {
		return nil, domain.ErrServiceUnavailable
	}

	w := &BookingWorkflow{
		client:    client,
		notifier:  domain.NotifierFunc(func(context.Context, models.Notification) {}),
		retry:     DefaultRetryPolicy(),
		now:       time.Now,
		username:  username,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.state = WorkflowState{
		SessionID:    w.sessionID,
		Username:     username,
		Availability: AvailabilityIdle,
		Booking:      BookingNoSelection,
	}
	return w, nil
}

// Username returns the host whose page the workflow drives.
func (w *BookingWorkflow) Username() string {
	return w.username
}

// SessionID returns the identifier of the visitor session.
func (w *BookingWorkflow) SessionID() string {
	return w.sessionID
}

// SelectDate moves availability to Loading for date and fetches it in the
// background with ctx. A fetch for a previously selected date that is still
// outstanding is left to finish and its result is discarded.
func (w *BookingWorkflow) SelectDate(ctx context.Context, date string) error {
	if err := domain.ValidateDate(date); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.startFetchLocked(ctx, date)
	return nil
}

// Refresh re-fetches availability for the current date.
func (w *BookingWorkflow) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Date == "" {
		return domain.ErrNoDateSelected
	}
	w.startFetchLocked(ctx, w.state.Date)
	return nil
}

// startFetchLocked must be called with w.mu held.
func (w *BookingWorkflow) startFetchLocked(ctx context.Context, date string) {
	w.seq++
	tag := w.seq

	w.state.Date = date
	w.state.Availability = AvailabilityLoading
	w.state.Slots = nil
	w.state.AvailabilityError = ""
	w.state.FetchAttempts = 0

	w.fetches.Add(1)
	go w.fetch(ctx, tag, date)
}

// Wait blocks until every outstanding availability fetch has settled.
func (w *BookingWorkflow) Wait() {
	w.fetches.Wait()
}

func (w *BookingWorkflow) fetch(ctx context.Context, tag uint64, date string) {
	defer w.fetches.Done()

	ctx = logging.WithSession(ctx, w.sessionID, w.username)
	ctx = logging.AppendCtx(ctx, slog.String("date", date))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "booking.availability.fetch",
		trace.WithAttributes(
			attribute.String("booking.username", w.username),
			attribute.String("booking.date", date),
			attribute.String("booking.session_id", w.sessionID),
		),
	)
	defer span.End()

	var (
		resp *models.AvailabilityResponse
		err  error
	)
	maxAttempts := 1 + w.retry.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := w.retry.Backoff(attempt - 1)
			slog.WarnContext(ctx, "availability fetch failed, retrying",
				"attempt", attempt+1,
				"max_retries", w.retry.MaxRetries,
				"backoff", backoff.String(),
				logging.ErrKey, err,
			)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				err = domain.NewTransportError("availability fetch cancelled", ctx.Err())
			case <-timer.C:
			}
			if ctx.Err() != nil {
				break
			}
		}

		if !w.markAttempt(tag, attempt+1) {
			slog.DebugContext(ctx, "availability fetch superseded before attempt", "attempt", attempt+1)
			span.SetAttributes(attribute.Bool("booking.stale", true))
			return
		}

		resp, err = w.client.GetAvailability(ctx, w.username, date)
		if err == nil || !shouldRetryFetch(ctx, err) || w.isStale(tag) {
			break
		}
	}

	span.SetAttributes(attribute.Int("booking.fetch_attempts", w.attempts(tag)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.Reason(err))
	}

	w.applyFetchResult(ctx, tag, date, resp, err)
}

// markAttempt records an attempt for the fetch tagged tag. It reports false
// when the fetch has been superseded.
func (w *BookingWorkflow) markAttempt(tag uint64, attempt int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if tag != w.seq {
		return false
	}
	w.state.FetchAttempts = attempt
	return true
}

func (w *BookingWorkflow) isStale(tag uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return tag != w.seq
}

func (w *BookingWorkflow) attempts(tag uint64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if tag != w.seq {
		return 0
	}
	return w.state.FetchAttempts
}

func (w *BookingWorkflow) applyFetchResult(ctx context.Context, tag uint64, date string, resp *models.AvailabilityResponse, err error) {
	var notification models.Notification

	w.mu.Lock()
	if tag != w.seq {
		w.mu.Unlock()
		slog.DebugContext(ctx, "discarding superseded availability response")
		return
	}

	if err == nil && resp == nil {
		err = domain.NewRequestError(0, "empty availability response")
	}

	if err != nil {
		reason := utils.CoalesceString(domain.Reason(err), "Failed to load availability")
		w.state.Availability = AvailabilityErrored
		w.state.AvailabilityError = reason
		notification = w.newNotificationLocked(models.NotificationAvailabilityFailed, "Error loading calendar", reason, models.VariantDestructive)
		notification.StatusCode = domain.GetStatusCode(err)
		w.mu.Unlock()

		slog.ErrorContext(ctx, "failed to load availability",
			"attempts", w.attempts(tag),
			logging.ErrKey, err,
		)
		w.notifier.Notify(ctx, notification)
		return
	}

	data := resp.Data
	w.state.Availability = AvailabilityLoaded
	w.state.Slots = append([]models.TimeSlot(nil), data.Availability...)
	w.state.CalendarInfo = data.CalendarInfo
	w.state.User = data.User
	w.state.Timezone = utils.CoalesceString(data.Timezone, data.CalendarInfo.Timezone)
	notification = w.newNotificationLocked(models.NotificationAvailabilityLoaded, "Availability loaded",
		fmt.Sprintf("%d time slots available on %s", len(data.Availability), models.FormatLongDate(date)),
		models.VariantDefault)
	w.mu.Unlock()

	slog.DebugContext(ctx, "availability loaded", "slots", len(data.Availability))
	w.notifier.Notify(ctx, notification)
}

// SelectSlot selects one of the loaded slots for booking. It is accepted only
// while availability is Loaded and no submission is outstanding.
func (w *BookingWorkflow) SelectSlot(slot models.TimeSlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Booking == BookingSubmitting {
		return domain.ErrSubmissionInProgress
	}
	if w.state.Availability != AvailabilityLoaded {
		return domain.ErrAvailabilityNotLoaded
	}
	for _, offered := range w.state.Slots {
		if models.SameSlot(offered, slot) {
			selected := offered
			w.state.SelectedSlot = &selected
			w.state.Booking = BookingSlotSelected
			w.state.Form = nil
			w.state.Confirmed = nil
			w.state.SubmissionError = ""
			return nil
		}
	}
	return domain.ErrSlotNotOffered
}

// Submit validates the form and books the selected slot. Invalid input is
// rejected without a network call and leaves the state unchanged. While a
// submission is outstanding further calls return domain.ErrSubmissionInProgress.
//
// On success the workflow moves to Confirmed and re-fetches availability for
// the current date. On failure it moves to SubmissionFailed and keeps the
// selected slot. Submissions are never retried automatically.
func (w *BookingWorkflow) Submit(ctx context.Context, form models.BookingFormInputs) (*models.Booking, error) {
	form = form.Normalize()

	w.mu.Lock()
	if w.state.Booking == BookingSubmitting {
		w.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}
	if w.state.SelectedSlot == nil {
		w.mu.Unlock()
		return nil, domain.ErrNoSlotSelected
	}
	if err := domain.ValidateBookingForm(form); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	slot := *w.state.SelectedSlot
	request := models.NewBookingRequest(slot, form, w.state.CalendarInfo.PreferredPlatform(), w.state.Timezone)
	if err := domain.ValidateBookingRequest(request); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	w.state.Booking = BookingSubmitting
	w.state.Form = &form
	w.state.SubmissionError = ""
	w.mu.Unlock()

	ctx = logging.WithSession(ctx, w.sessionID, w.username)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "booking.submit",
		trace.WithAttributes(
			attribute.String("booking.username", w.username),
			attribute.String("booking.date", request.Date),
			attribute.String("booking.start_time", request.StartTime),
			attribute.String("booking.platform", request.Platform),
		),
	)
	defer span.End()

	slog.InfoContext(ctx, "submitting booking", "date", request.Date, "start_time", request.StartTime)

	resp, err := w.client.SubmitBooking(ctx, w.username, request)
	var booking models.Booking
	if err == nil {
		var ok bool
		if booking, ok = resp.First(); !ok {
			err = domain.NewRequestError(0, "booking response contained no bookings")
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.Reason(err))
		w.failSubmission(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.uid", booking.BookingUID))
	w.confirmSubmission(ctx, booking)
	return &booking, nil
}

func (w *BookingWorkflow) failSubmission(ctx context.Context, err error) {
	reason := utils.CoalesceString(domain.Reason(err), "Failed to book appointment")

	w.mu.Lock()
	w.state.Booking = BookingSubmissionFailed
	w.state.SubmissionError = reason
	w.state.Form = nil
	notification := w.newNotificationLocked(models.NotificationBookingFailed, "Booking failed", reason, models.VariantDestructive)
	notification.StatusCode = domain.GetStatusCode(err)
	w.mu.Unlock()

	slog.ErrorContext(ctx, "booking submission failed", logging.ErrKey, err)
	w.notifier.Notify(ctx, notification)
}

// confirmSubmission records the booking and starts the mandatory refresh of
// the current date so the booked slot is no longer offered.
func (w *BookingWorkflow) confirmSubmission(ctx context.Context, booking models.Booking) {
	w.mu.Lock()
	w.state.Booking = BookingConfirmed
	w.state.Confirmed = &booking
	w.state.SelectedSlot = nil
	w.state.Form = nil
	notification := w.newNotificationLocked(models.NotificationBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your meeting is scheduled for %s at %s.", models.FormatLongDate(booking.Date), models.FormatClock(booking.StartTime)),
		models.VariantDefault)
	notification.Date = booking.Date
	notification.BookingUID = booking.BookingUID
	if w.state.Date != "" {
		// The refresh belongs to the workflow, not to the caller's request.
		w.startFetchLocked(context.WithoutCancel(ctx), w.state.Date)
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "booking confirmed", "booking_uid", booking.BookingUID)
	w.notifier.Notify(ctx, notification)
}

// Dismiss closes the confirmation or error and returns the booking state to
// NoSelection. Availability is unaffected. It is refused while submitting.
func (w *BookingWorkflow) Dismiss() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Booking == BookingSubmitting {
		return domain.ErrSubmissionInProgress
	}
	w.state.Booking = BookingNoSelection
	w.state.SelectedSlot = nil
	w.state.Form = nil
	w.state.Confirmed = nil
	w.state.SubmissionError = ""
	return nil
}

// Snapshot returns a copy of the current state.
func (w *BookingWorkflow) Snapshot() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	s.Slots = append([]models.TimeSlot(nil), w.state.Slots...)
	s.SlotsByPeriod = models.GroupByPeriod(s.Slots)
	s.CalendarInfo.MeetingPlatforms = append([]models.MeetingPlatform(nil), w.state.CalendarInfo.MeetingPlatforms...)
	s.User = w.state.User.Clone()
	if w.state.SelectedSlot != nil {
		selected := *w.state.SelectedSlot
		s.SelectedSlot = &selected
	}
	if w.state.Form != nil {
		form := *w.state.Form
		s.Form = &form
	}
	if w.state.Confirmed != nil {
		confirmed := *w.state.Confirmed
		confirmed.Attendees = append([]models.Attendee(nil), w.state.Confirmed.Attendees...)
		s.Confirmed = &confirmed
	}
	return s
}

// newNotificationLocked must be called with w.mu held.
func (w *BookingWorkflow) newNotificationLocked(kind models.NotificationKind, title, description string, variant models.NotificationVariant) models.Notification {
	return models.Notification{
		Kind:        kind,
		Title:       title,
		Description: description,
		Variant:     variant,
		SessionID:   w.sessionID,
		Username:    w.username,
		Date:        w.state.Date,
		OccurredAt:  w.now().UTC(),
	}
}
