// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging contains the logging functionality for the booking client.
package logging

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	slogotel "github.com/remychantenay/slog-otel"
)

type ctxKey string

// Public constants
const (
	ErrKey = "error"
)

// Private constants
const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Log formats
	formatJSON = "json"
	formatText = "text"

	// Log field for critical errors.
	priorityCritical = "critical"
)

type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	existing, _ := parent.Value(slogFields).([]slog.Attr)
	// Copy so sibling contexts never share a backing array.
	v := make([]slog.Attr, 0, len(existing)+1)
	v = append(v, existing...)
	v = append(v, attr)
	return context.WithValue(parent, slogFields, v)
}

// WithSession tags every record logged with ctx with the visitor session and
// the host being booked.
func WithSession(ctx context.Context, sessionID, username string) context.Context {
	ctx = AppendCtx(ctx, slog.String("session_id", sessionID))
	return AppendCtx(ctx, slog.String("username", username))
}

// InitStructureLogConfig sets the structured log behavior
func InitStructureLogConfig() slog.Handler {
	return InitStructureLogConfigTo(os.Stdout)
}

// InitStructureLogConfigTo sets the structured log behavior, writing records to w.
// LOG_LEVEL selects the level, LOG_ADD_SOURCE adds source locations and
// LOG_FORMAT chooses between json (default) and text. Records carry the trace
// and span IDs of the active span when there is one.
func InitStructureLogConfigTo(w io.Writer) slog.Handler {
	logOptions := &slog.HandlerOptions{
		Level:     parseLevel(os.Getenv("LOG_LEVEL")),
		AddSource: parseBool(os.Getenv("LOG_ADD_SOURCE")),
	}

	var h slog.Handler
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	switch format {
	case formatText:
		h = slog.NewTextHandler(w, logOptions)
	default:
		format = formatJSON
		h = slog.NewJSONHandler(w, logOptions)
	}
	h = slogotel.OtelHandler{Next: h}

	log.SetFlags(log.Llongfile)
	slog.SetDefault(slog.New(contextHandler{h}))

	slog.Info("log config",
		"logLevel", logOptions.Level,
		"addSource", logOptions.AddSource,
		"format", format,
	)

	return h
}

// parseLevel maps LOG_LEVEL to a level; unknown values log everything.
func parseLevel(raw string) slog.Level {
	var level slog.Level
	if raw == "" || level.UnmarshalText([]byte(raw)) != nil {
		return logLevelDefault
	}
	return level
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "t", "1":
		return true
	}
	return false
}

// Priority creates a slog.Attr for error priority classification
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical marks errors that should be escalated, such as a panic in
// the fixture server.
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}
