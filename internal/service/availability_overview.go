// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

// DaySummary is the availability of one date in the overview.
type DaySummary struct {
	Date     string
	Slots    int
	ByPeriod map[models.Period]int
	// Err is set when the date could not be loaded. Other dates are unaffected.
	Err error
}

// Available reports whether the date loaded and has at least one open slot.
func (d DaySummary) Available() bool {
	return d.Err == nil && d.Slots > 0
}

// AvailabilityOverview summarizes a host's availability across several dates.
// It is read-only and shares nothing with booking workflows.
type AvailabilityOverview struct {
	client domain.AvailabilityClient
	pool   *concurrent.WorkerPool
}

// NewAvailabilityOverview creates an overview fetching with at most workers
// concurrent requests. Zero uses constants.DefaultOverviewWorkers.
func NewAvailabilityOverview(client domain.AvailabilityClient, workers int) *AvailabilityOverview {
	if workers <= 0 {
		workers = constants.DefaultOverviewWorkers
	}
	return &AvailabilityOverview{
		client: client,
		pool:   concurrent.NewWorkerPool(workers),
	}
}

// ServiceReady reports whether the overview has a client to talk to.
func (o *AvailabilityOverview) ServiceReady() bool {
	return o != nil && o.client != nil
}

// Summaries fetches every date concurrently and returns one summary per date
// in the order given. Per-date failures are reported on the summary; the
// returned error is only set when the overview cannot run at all.
func (o *AvailabilityOverview) Summaries(ctx context.Context, username string, dates []string) ([]DaySummary, error) {
	if !o.ServiceReady() {
		return nil, domain.ErrServiceUnavailable
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUserNotFound
	}

	ctx = logging.AppendCtx(ctx, slog.String("username", username))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "booking.availability.overview",
		trace.WithAttributes(
			attribute.String("booking.username", username),
			attribute.Int("booking.dates", len(dates)),
		),
	)
	defer span.End()

	results := concurrent.Map(ctx, o.pool, dates, func(ctx context.Context, date string) (*models.AvailabilityResponse, error) {
		if err := domain.ValidateDate(date); err != nil {
			return nil, err
		}
		return o.client.GetAvailability(ctx, username, date)
	})

	summaries := make([]DaySummary, len(dates))
	failed := 0
	for i, result := range results {
		summary := DaySummary{Date: dates[i], Err: result.Err}
		if result.Err == nil && result.Value != nil {
			slots := result.Value.Data.Availability
			summary.Slots = len(slots)
			summary.ByPeriod = make(map[models.Period]int, len(models.Periods))
			for period, group := range models.GroupByPeriod(slots) {
				summary.ByPeriod[period] = len(group)
			}
		}
		if summary.Err != nil {
			failed++
			slog.WarnContext(ctx, "failed to load availability for overview date",
				"date", summary.Date,
				logging.ErrKey, summary.Err,
			)
		}
		summaries[i] = summary
	}

	span.SetAttributes(attribute.Int("booking.failed_dates", failed))
	slog.DebugContext(ctx, "availability overview loaded", "dates", len(dates), "failed", failed)
	return summaries, nil
}

// Window summarizes the selectable date window starting with from's date.
func (o *AvailabilityOverview) Window(ctx context.Context, username string, from time.Time, days int) ([]DaySummary, error) {
	if days <= 0 {
		days = models.DefaultDateWindow
	}
	return o.Summaries(ctx, username, models.DateOptions(from, days))
}
