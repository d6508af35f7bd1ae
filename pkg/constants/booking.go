// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Booking workflow defaults
const (
	// DefaultSlotDurationMinutes is the slot length offered by the fixture backend
	DefaultSlotDurationMinutes = 30

	// DefaultAvailabilityRetries is the number of automatic retries of a failed availability fetch.
	// Booking submissions are never retried automatically.
	DefaultAvailabilityRetries = 1

	// DefaultRetryBackoff is the delay before retrying a failed availability fetch
	DefaultRetryBackoff = 1 * time.Second

	// DefaultOverviewWorkers is the number of concurrent availability fetches for the date overview
	DefaultOverviewWorkers = 4

	// DefaultClientTimeout is the HTTP client timeout for calendar API requests
	DefaultClientTimeout = 30 * time.Second
)
