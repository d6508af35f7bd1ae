// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

// ServerConfig holds the configuration for the calendar HTTP handler
type ServerConfig struct {
	// AllowedOrigins lists the CORS origins; empty allows any origin.
	AllowedOrigins []string
}

// Server serves the public calendar API from a backend
type Server struct {
	backend domain.AvailabilityClient
}

// NewHandler returns the public calendar API handler for a backend, usually a
// FixtureClient. Requests get an X-REQUEST-ID, are logged, and panics are recovered.
func NewHandler(backend domain.AvailabilityClient, config ServerConfig) http.Handler {
	s := &Server{backend: backend}

	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware(), middleware.RequestLoggerMiddleware())

	r.HandleFunc(middleware.HealthPath, s.Livez).Methods(http.MethodGet)

	public := r.PathPrefix(constants.PublicCalendarBasePath).Subrouter()
	public.HandleFunc("/{username}/availability", s.GetAvailability).Methods(http.MethodGet)
	public.HandleFunc("/{username}/book/", s.SubmitBooking).Methods(http.MethodPost)

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{constants.ContentTypeHeader, constants.AcceptHeader, constants.RequestIDHeader}),
		handlers.ExposedHeaders([]string{constants.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)

	return recovery(cors(r))
}

// Livez reports that the server is up
func (s *Server) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// GetAvailability handles GET /{username}/availability?date=YYYY-MM-DD
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	date := r.URL.Query().Get("date")

	resp, err := s.backend.GetAvailability(r.Context(), username, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// SubmitBooking handles POST /{username}/book/
func (s *Server) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, domain.NewValidationError("invalid request body", err))
		return
	}

	resp, err := s.backend.SubmitBooking(r.Context(), username, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, resp)
}

// failureResponse is the error envelope of the calendar API
type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "calendar request failed", "status", status, logging.ErrKey, err)
	} else {
		slog.WarnContext(r.Context(), "calendar request rejected", "status", status, logging.ErrKey, err)
	}
	s.writeJSON(w, r, status, failureResponse{Success: false, Message: domain.Reason(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", logging.ErrKey, err)
	}
}

// statusForError maps a domain error to the HTTP status the API answers with
func statusForError(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeRequest:
		if code := domain.GetStatusCode(err); code >= http.StatusBadRequest {
			return code
		}
		return http.StatusBadGateway
	case domain.ErrorTypeTransport, domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// recoveryLogger routes recovered panics to slog
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	slog.Error("recovered from panic", logging.ErrKey, fmt.Sprint(v...), logging.PriorityCritical())
}
