// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

// Default retry configuration for availability fetches
const (
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// RetryPolicy controls the automatic retries of availability fetches.
// Bookings are never retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt. Zero uses
	// the default of one retry, a negative value disables retries and larger
	// values are capped at the default.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the retry policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{}.withDefaults()
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries == 0 {
		p.MaxRetries = constants.DefaultAvailabilityRetries
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.MaxRetries > constants.DefaultAvailabilityRetries {
		p.MaxRetries = constants.DefaultAvailabilityRetries
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = constants.DefaultRetryBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = DefaultBackoffMultiplier
	}
	return p
}

// Backoff calculates the delay before retry number attempt (zero-based) with ±25% jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 0
	}

	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > p.MaxBackoff {
		backoff = float64(p.MaxBackoff)
	}

	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)

	// Never go below the initial backoff
	if backoffWithJitter < p.InitialBackoff {
		backoffWithJitter = p.InitialBackoff
	}
	return backoffWithJitter
}

// shouldRetryFetch reports whether a failed availability fetch may be retried.
// Validation failures and cancelled callers are final.
func shouldRetryFetch(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeConflict, domain.ErrorTypeNotFound:
		return false
	}
	return true
}
