// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// AvailabilityClient is the boundary to the public calendar API.
//
// Implementations hold no state between calls. Failures are returned as
// *DomainError values typed ErrorTypeValidation (rejected before any network
// call), ErrorTypeRequest (the server answered with a failure or an unusable
// payload) or ErrorTypeTransport (no response).
type AvailabilityClient interface {
	// GetAvailability returns the host's availability for a "YYYY-MM-DD" date.
	// An empty slot list is a valid result.
	GetAvailability(ctx context.Context, username, date string) (*models.AvailabilityResponse, error)

	// SubmitBooking books a slot and returns at least one confirmed booking on success.
	SubmitBooking(ctx context.Context, username string, request models.BookingRequest) (*models.BookingResponse, error)
}
