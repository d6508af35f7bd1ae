// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// MockAvailabilityClient implements AvailabilityClient for testing
type MockAvailabilityClient struct {
	mock.Mock
}

var _ domain.AvailabilityClient = (*MockAvailabilityClient)(nil)

func (m *MockAvailabilityClient) GetAvailability(ctx context.Context, username, date string) (*models.AvailabilityResponse, error) {
	args := m.Called(ctx, username, date)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(*models.AvailabilityResponse), args.Error(1)
}

func (m *MockAvailabilityClient) SubmitBooking(ctx context.Context, username string, request models.BookingRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, username, request)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(*models.BookingResponse), args.Error(1)
}
