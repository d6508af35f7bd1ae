// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/ics"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/notification"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/service"
)

// app holds what every command needs.
type app struct {
	env    environment
	client domain.AvailabilityClient
	// publisher receives every notification in addition to the terminal, e.g. NATS.
	publisher domain.Notifier
	out       io.Writer
	now       func() time.Time

	outMu sync.Mutex
}

func (a *app) run(ctx context.Context, command string, opts commandOptions) error {
	switch command {
	case commandSlots:
		return a.slots(ctx, opts)
	case commandBook:
		return a.book(ctx, opts)
	case commandWeek:
		return a.week(ctx, opts)
	case commandWatch:
		return a.watch(ctx, opts)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

// printer renders notifications to the terminal as they are emitted.
func (a *app) printer() domain.Notifier {
	return domain.NotifierFunc(func(_ context.Context, n models.Notification) {
		a.outMu.Lock()
		defer a.outMu.Unlock()
		renderNotification(a.out, n)
	})
}

func (a *app) newWorkflow(username string, terminal domain.Notifier) (*service.BookingWorkflow, error) {
	return service.NewBookingWorkflow(username, a.client,
		service.WithNotifier(notification.Multi{notification.LogNotifier{}, a.publisher, terminal}),
		service.WithRetryPolicy(a.env.Service.Retry),
		service.WithClock(a.now),
	)
}

// load selects date on w and waits for the availability to settle.
func load(ctx context.Context, w *service.BookingWorkflow, date string) (service.WorkflowState, error) {
	if err := w.SelectDate(ctx, date); err != nil {
		return service.WorkflowState{}, err
	}
	w.Wait()

	state := w.Snapshot()
	if state.Availability == service.AvailabilityErrored {
		return state, domain.NewUnavailableError(state.AvailabilityError)
	}
	return state, nil
}

// slots lists the open slots of one date.
func (a *app) slots(ctx context.Context, opts commandOptions) error {
	w, err := a.newWorkflow(opts.Username, a.printer())
	if err != nil {
		return err
	}

	state, err := load(ctx, w, opts.Date)
	renderAvailability(a.out, state)
	return err
}

// book selects the slot starting at opts.Time on opts.Date and books it.
func (a *app) book(ctx context.Context, opts commandOptions) error {
	w, err := a.newWorkflow(opts.Username, a.printer())
	if err != nil {
		return err
	}

	state, err := load(ctx, w, opts.Date)
	if err != nil {
		renderAvailability(a.out, state)
		return err
	}

	var selected *models.TimeSlot
	for _, slot := range state.Slots {
		if slot.Time == opts.Time {
			selected = &slot
			break
		}
	}
	if selected == nil {
		renderAvailability(a.out, state)
		return fmt.Errorf("%w: %s on %s", domain.ErrSlotNotOffered, opts.Time, opts.Date)
	}
	if err := w.SelectSlot(*selected); err != nil {
		return err
	}

	booking, err := w.Submit(ctx, models.BookingFormInputs{Name: opts.Name, Email: opts.Email, Notes: opts.Notes})
	if err != nil {
		return err
	}
	renderBooking(a.out, *booking)

	if opts.ICSPath != "" {
		if err := a.writeInvitation(opts.ICSPath, *booking, state.User); err != nil {
			// The booking stands; only the export failed.
			slog.With(logging.ErrKey, err, "path", opts.ICSPath).Error("failed to write calendar invitation")
			fmt.Fprintf(a.out, "Could not write calendar invitation: %s\n", domain.Reason(err))
		}
	}

	// The refreshed list no longer offers the booked slot.
	w.Wait()
	slog.DebugContext(ctx, "availability refreshed after booking", "slots", len(w.Snapshot().Slots))
	return nil
}

// writeInvitation saves booking as an iCalendar file at path.
func (a *app) writeInvitation(path string, booking models.Booking, host models.UserInfo) error {
	invitation, err := ics.GenerateBookingInvitation(ics.InvitationParams{
		Booking:   booking,
		Organizer: ics.Organizer{Name: host.Username, Email: host.Email},
		Stamp:     a.now(),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(invitation), 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Calendar invitation written to %s\n", path)
	return nil
}

// week summarizes the date selector window.
func (a *app) week(ctx context.Context, opts commandOptions) error {
	from, err := models.ParseDate(opts.Date)
	if err != nil {
		return domain.NewValidationError(fmt.Sprintf("date %q must be formatted as YYYY-MM-DD", opts.Date), err)
	}

	overview := service.NewAvailabilityOverview(a.client, a.env.Service.OverviewWorkers)
	summaries, err := overview.Window(ctx, opts.Username, from, opts.Days)
	if err != nil {
		return err
	}
	renderOverview(a.out, opts.Username, summaries)

	var errs []error
	for _, day := range summaries {
		if day.Err != nil {
			errs = append(errs, day.Err)
		}
	}
	if len(errs) == len(summaries) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// watch loads one date and refreshes it on opts.Schedule until ctx is done,
// printing the slot list after every successful refresh.
func (a *app) watch(ctx context.Context, opts commandOptions) error {
	updates := notification.NewChannelNotifier(8)
	w, err := a.newWorkflow(opts.Username, updates)
	if err != nil {
		return err
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(opts.Schedule, func() {
		if err := w.Refresh(ctx); err != nil {
			slog.With(logging.ErrKey, err).Warn("scheduled availability refresh failed")
		}
	}); err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid schedule %q", opts.Schedule), err)
	}

	if err := w.SelectDate(ctx, opts.Date); err != nil {
		return err
	}
	scheduler.Start()

	for {
		select {
		case <-ctx.Done():
			<-scheduler.Stop().Done()
			w.Wait()
			return nil
		case n := <-updates.C():
			renderNotification(a.out, n)
			if n.Kind == models.NotificationAvailabilityLoaded {
				renderAvailability(a.out, w.Snapshot())
			}
		}
	}
}
