// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the booking client command line. It lists a host's open
// time slots, books one, summarizes the coming week and watches a date for
// changes, against any server implementing the public calendar API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/notification"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is normal; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env file:", err)
	}

	// Keep the terminal quiet unless asked otherwise.
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	if os.Getenv("LOG_FORMAT") == "" {
		_ = os.Setenv("LOG_FORMAT", "text")
	}
	f, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		return 2
	}
	env := parseEnv()

	// Logs go to stderr so command output stays clean on stdout.
	logging.InitStructureLogConfigTo(os.Stderr)

	opts, err := parseCommandFlags(f.Command, f.Args, env, models.FormatDate(time.Now()), os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
		}
	}()

	a := &app{
		env: env,
		client: calendar.NewClient(calendar.Config{
			BaseURL: env.CalendarAPIURL,
			Timeout: env.CalendarAPITimeout,
		}),
		out: os.Stdout,
		now: time.Now,
	}

	natsConn, err := setupNATS(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS, notifications will not be published")
	}
	if natsConn != nil {
		defer closeNATS(natsConn)
		a.publisher = notification.NewPublisherNotifier(messaging.NewMessageBuilder(natsConn), notification.DefaultPublishTimeout)
	}

	if err := a.run(ctx, f.Command, opts); err != nil {
		slog.With(logging.ErrKey, err, "command", f.Command).Debug("command failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}
