// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
)

// flags are the command line flags for the fixture server.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the fixture server.
type environment struct {
	Port           string
	Timezone       string
	AllowedOrigins []string
}

// parseFlags parses command line flags for the fixture server
func parseFlags(defaultPort string, args []string, stderr io.Writer) (flags, error) {
	fs := flag.NewFlagSet("calendar-fixture-server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("d", false, "enable debug logging")
	port := fs.String("p", defaultPort, "listen port")
	bind := fs.String("bind", "*", "interface to bind on")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}, nil
}

// parseEnv parses environment variables for the fixture server
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	timezone := os.Getenv("FIXTURE_TIMEZONE")
	if timezone == "" {
		timezone = calendar.DefaultFixtureTimezone
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return environment{
		Port:           port,
		Timezone:       timezone,
		AllowedOrigins: origins,
	}
}

// listenAddr returns the address to listen on for the bind and port flags.
func listenAddr(f flags) string {
	if f.Bind == "*" {
		return ":" + f.Port
	}
	return f.Bind + ":" + f.Port
}
