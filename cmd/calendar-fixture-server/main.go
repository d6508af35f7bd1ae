// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main serves the public calendar API from a deterministic in-memory
// calendar, for running the booking client locally without a real backend.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// gracefulShutdownSeconds bounds how long in-flight requests may take once a signal arrives.
const gracefulShutdownSeconds = 25

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.With(logging.ErrKey, err).Warn("error loading .env file")
	}

	env := parseEnv()
	f, err := parseFlags(env.Port, os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logging.InitStructureLogConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		os.Exit(1)
	}

	fixture := calendar.NewFixtureClient(calendar.FixtureConfig{Timezone: env.Timezone})
	handler := calendar.NewHandler(fixture, calendar.ServerConfig{AllowedOrigins: env.AllowedOrigins})

	addr := listenAddr(f)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(handler, "calendar-fixture-server"),
		ReadHeaderTimeout: 3 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.With("addr", addr, "timezone", env.Timezone).Info("starting calendar fixture server")
		serveErr <- httpServer.ListenAndServe()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("shutting down calendar fixture server")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.With(logging.ErrKey, err).Error("http listener error")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
		exitCode = 1
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
	}

	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
