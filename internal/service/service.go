// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

// Service is implemented by every booking service so commands can check wiring
// before serving a visitor.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// Retry is the availability retry policy used by booking workflows.
	Retry RetryPolicy
	// OverviewWorkers bounds the concurrent fetches of the availability overview.
	OverviewWorkers int
}

// ServiceReady reports whether the workflow has a client to talk to.
func (w *BookingWorkflow) ServiceReady() bool {
	return w != nil && w.client != nil
}

var (
	_ Service = (*BookingWorkflow)(nil)
	_ Service = (*AvailabilityOverview)(nil)
)
