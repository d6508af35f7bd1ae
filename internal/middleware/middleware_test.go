// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		incoming  string
		wantReuse bool
	}{
		{name: "generates an id when missing", incoming: ""},
		{name: "keeps the caller's id", incoming: "req-123", wantReuse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen, _ = r.Context().Value(constants.RequestIDContextID).(string)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/calendar/v2/public/kunal/availability", nil)
			if tt.incoming != "" {
				req.Header.Set(constants.RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(constants.RequestIDHeader))
			if tt.wantReuse {
				assert.Equal(t, tt.incoming, seen)
			}
		})
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestIDMiddleware()(RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/calendar/v2/public/kunal/book/", nil)
	req.Header.Set(constants.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"HTTP request"`)
	assert.Contains(t, out, `"msg":"HTTP response"`)
	assert.Contains(t, out, `"status":409`)
}

func TestRequestLoggerMiddleware_DefaultStatus(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRequestLoggerMiddleware_SkipsHealthCheck(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.False(t, strings.Contains(buf.String(), "HTTP request"))
}
