// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// Config holds the configuration for the calendar API client
type Config struct {
	// BaseURL is the API origin, e.g. "https://cal.example.org". The public
	// calendar base path is appended by the client.
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override the round tripper, e.g. in tests
	Transport http.RoundTripper
}

// Client implements domain.AvailabilityClient over the public calendar API
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements domain.AvailabilityClient
var _ domain.AvailabilityClient = (*Client)(nil)

// NewClient creates a new calendar API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = constants.DefaultCalendarAPIURL
	}
	// Strip trailing slash from base URL to prevent double slashes in URL construction
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = constants.DefaultClientTimeout
	}

	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		config: config,
	}
}

// GetAvailability fetches the host's availability for a "YYYY-MM-DD" date
func (c *Client) GetAvailability(ctx context.Context, username, date string) (*models.AvailabilityResponse, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}

	endpoint := c.config.BaseURL + constants.AvailabilityPath(username) + "?" + url.Values{"date": []string{date}}.Encode()

	var result models.AvailabilityResponse
	status, err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &result)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, domain.NewRequestError(status, utils.CoalesceString(strings.TrimSpace(result.Message), "availability request was not successful"))
	}

	slog.DebugContext(ctx, "availability fetched",
		"username", username,
		"date", date,
		"slots", len(result.Data.Availability),
	)
	return &result, nil
}

// SubmitBooking books a slot for the host
func (c *Client) SubmitBooking(ctx context.Context, username string, request models.BookingRequest) (*models.BookingResponse, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if err := domain.ValidateBookingRequest(request); err != nil {
		return nil, err
	}

	endpoint := c.config.BaseURL + constants.BookPath(username)

	var result models.BookingResponse
	status, err := c.doJSON(ctx, http.MethodPost, endpoint, request, &result)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, domain.NewRequestError(status, utils.CoalesceString(strings.TrimSpace(result.Message), "booking request was not successful"))
	}
	if _, ok := result.First(); !ok {
		return nil, domain.NewRequestError(status, "booking response contained no bookings")
	}

	return &result, nil
}

// doJSON performs one request and decodes a successful JSON response into out.
// It returns the HTTP status of the response.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) (int, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return 0, domain.NewInternalError("failed to marshal request", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, domain.NewInternalError("failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(constants.RequestIDHeader, requestID)
	req.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)
	req.Header.Set(constants.UserAgentHeader, constants.UserAgent)
	if body != nil {
		req.Header.Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	}

	ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
	c.logRequest(ctx, method, endpoint, body)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.ErrorContext(ctx, "calendar API request failed",
			"method", method,
			"url", endpoint,
			"duration", duration.String(),
			logging.ErrKey, err,
		)
		return 0, domain.NewTransportError("calendar service request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, domain.NewTransportError("failed to read response", err)
	}

	c.logResponse(ctx, resp.StatusCode, duration, respBody)

	contentType := resp.Header.Get(constants.ContentTypeHeader)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, c.mapHTTPError(resp.StatusCode, contentType, respBody)
	}

	if !isJSON(contentType) {
		return resp.StatusCode, domain.NewRequestError(resp.StatusCode,
			fmt.Sprintf("unexpected response content type %q", contentType))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, domain.NewRequestError(resp.StatusCode, "failed to parse response", err)
	}

	return resp.StatusCode, nil
}

// logRequest logs the outgoing HTTP request for debugging
func (c *Client) logRequest(ctx context.Context, method, url string, body []byte) {
	slog.DebugContext(ctx, "calendar API request",
		"method", method,
		"url", url,
		"body", string(body),
	)
}

// logResponse logs the incoming HTTP response for debugging
func (c *Client) logResponse(ctx context.Context, statusCode int, duration time.Duration, body []byte) {
	if statusCode < 200 || statusCode >= 300 {
		slog.WarnContext(ctx, "calendar API response error",
			"status_code", statusCode,
			"duration", duration.String(),
			"body", string(body),
		)
		return
	}
	slog.DebugContext(ctx, "calendar API response",
		"status_code", statusCode,
		"duration", duration.String(),
		"body", string(body),
	)
}

// errorResponse is the structured failure body of the calendar API
type errorResponse struct {
	Message string `json:"message"`
}

// mapHTTPError maps a non-2xx response to a request error. The message comes
// from a structured body when there is one, else from the status line.
func (c *Client) mapHTTPError(statusCode int, contentType string, body []byte) error {
	var message string
	if isJSON(contentType) {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			message = strings.TrimSpace(errResp.Message)
		}
	}
	return domain.NewRequestError(statusCode, message)
}

// isJSON reports whether a Content-Type header declares a JSON payload.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == constants.ContentTypeJSON || strings.HasSuffix(mediaType, "+json")
}
