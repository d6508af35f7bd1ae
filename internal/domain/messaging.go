// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// Notifier receives the notifications a booking workflow emits. Implementations
// must not block the caller for long: notifications are fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, notification models.Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, notification models.Notification) {
	f(ctx, notification)
}

// NotificationPublisher forwards notifications to other services.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, notification models.Notification) error
}
