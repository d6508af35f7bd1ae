// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

func TestNotifierFunc(t *testing.T) {
	var got []models.NotificationKind
	var n Notifier = NotifierFunc(func(_ context.Context, notification models.Notification) {
		got = append(got, notification.Kind)
	})

	n.Notify(context.Background(), models.Notification{Kind: models.NotificationAvailabilityLoaded})
	n.Notify(context.Background(), models.Notification{Kind: models.NotificationBookingConfirmed})

	assert.Equal(t, []models.NotificationKind{models.NotificationAvailabilityLoaded, models.NotificationBookingConfirmed}, got)
}
