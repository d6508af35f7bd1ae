// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "net/url"

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ContentTypeHeader is the header name for the content type
	ContentTypeHeader string = "Content-Type"

	// AcceptHeader is the header name for the accepted response types
	AcceptHeader string = "Accept"

	// UserAgentHeader is the header name for the user agent
	UserAgentHeader string = "User-Agent"
)

// Content types exchanged with the calendar API
const (
	// ContentTypeJSON is the only structured payload format the calendar API returns
	ContentTypeJSON = "application/json"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// Public calendar API paths
const (
	// PublicCalendarBasePath is the base path of the public calendar API
	PublicCalendarBasePath = "/api/calendar/v2/public"

	// DefaultCalendarAPIURL is used when no API origin is configured
	DefaultCalendarAPIURL = "http://localhost:8080"

	// UserAgent identifies the booking client to the calendar API
	UserAgent = "lfx-v2-booking-client"
)

// AvailabilityPath returns the availability path for a host.
func AvailabilityPath(username string) string {
	return PublicCalendarBasePath + "/" + url.PathEscape(username) + "/availability"
}

// BookPath returns the booking path for a host. The trailing slash is part of the API contract.
func BookPath(username string) string {
	return PublicCalendarBasePath + "/" + url.PathEscape(username) + "/book/"
}
