// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// MockNotificationPublisher implements NotificationPublisher for testing
type MockNotificationPublisher struct {
	mock.Mock
}

var _ domain.NotificationPublisher = (*MockNotificationPublisher)(nil)

func (m *MockNotificationPublisher) PublishNotification(ctx context.Context, notification models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// RecordingNotifier implements Notifier and keeps every notification it receives.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

var _ domain.Notifier = (*RecordingNotifier)(nil)

// Notify records the notification.
func (r *RecordingNotifier) Notify(_ context.Context, notification models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification)
}

// Notifications returns a copy of the recorded notifications.
func (r *RecordingNotifier) Notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Kinds returns the kinds of the recorded notifications in order.
func (r *RecordingNotifier) Kinds() []models.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]models.NotificationKind, 0, len(r.notifications))
	for _, n := range r.notifications {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}
