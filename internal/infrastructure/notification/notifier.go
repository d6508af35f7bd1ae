// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package notification provides the sinks a booking workflow emits its
// user-visible notifications to.
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
)

// DefaultPublishTimeout bounds a single publish from PublisherNotifier.
const DefaultPublishTimeout = 5 * time.Second

// ChannelNotifier delivers notifications on a buffered channel. When the buffer
// is full the notification is dropped and logged rather than blocking the workflow.
type ChannelNotifier struct {
	ch chan models.Notification
}

var _ domain.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a ChannelNotifier with the given buffer size.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelNotifier{ch: make(chan models.Notification, buffer)}
}

// C returns the channel notifications are delivered on.
func (c *ChannelNotifier) C() <-chan models.Notification {
	return c.ch
}

// Notify sends the notification without blocking.
func (c *ChannelNotifier) Notify(ctx context.Context, notification models.Notification) {
	select {
	case c.ch <- notification:
	default:
		slog.WarnContext(ctx, "notification dropped, channel is full",
			"kind", notification.Kind,
			"session_id", notification.SessionID,
		)
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

var _ domain.Notifier = LogNotifier{}

// Notify logs the notification; destructive ones are logged as warnings.
func (LogNotifier) Notify(ctx context.Context, notification models.Notification) {
	level := slog.LevelInfo
	if notification.Variant == models.VariantDestructive {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "booking notification",
		"kind", notification.Kind,
		"title", notification.Title,
		"description", notification.Description,
		"username", notification.Username,
		"date", notification.Date,
		"booking_uid", notification.BookingUID,
		"session_id", notification.SessionID,
	)
}

// PublisherNotifier forwards notifications to a NotificationPublisher, such as NATS.
// Publish failures are logged and never reach the workflow.
type PublisherNotifier struct {
	publisher domain.NotificationPublisher
	timeout   time.Duration
}

var _ domain.Notifier = (*PublisherNotifier)(nil)

// NewPublisherNotifier creates a PublisherNotifier. A zero timeout uses DefaultPublishTimeout.
func NewPublisherNotifier(publisher domain.NotificationPublisher, timeout time.Duration) *PublisherNotifier {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &PublisherNotifier{publisher: publisher, timeout: timeout}
}

// Notify publishes the notification.
func (p *PublisherNotifier) Notify(ctx context.Context, notification models.Notification) {
	// Publishing outlives the workflow call that triggered it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.publisher.PublishNotification(ctx, notification); err != nil {
		slog.WarnContext(ctx, "failed to publish notification",
			"kind", notification.Kind,
			logging.ErrKey, err,
		)
	}
}

// Multi fans a notification out to several notifiers in order. Nil entries are skipped.
type Multi []domain.Notifier

var _ domain.Notifier = Multi(nil)

// Notify delivers the notification to every notifier.
func (m Multi) Notify(ctx context.Context, notification models.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, notification)
		}
	}
}
