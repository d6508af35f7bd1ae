// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/service"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// Commands understood by the booking CLI.
const (
	commandSlots = "slots"
	commandBook  = "book"
	commandWeek  = "week"
	commandWatch = "watch"
)

// defaultWatchSchedule is the cron spec used by watch when -schedule is omitted.
const defaultWatchSchedule = "@every 1m"

var errUsage = errors.New("usage error")

// flags are the global command line flags for the booking CLI.
type flags struct {
	Debug   bool
	Command string
	Args    []string
}

// environment are the environment variables for the booking CLI.
type environment struct {
	CalendarAPIURL     string
	CalendarAPITimeout time.Duration
	Service            service.ServiceConfig
	NATSURL            string
	// Username is the host used when -user is omitted.
	Username string
}

// commandOptions are the per-command flags.
type commandOptions struct {
	Username string
	Date     string
	Time     string
	Name     string
	Email    string
	Notes    string
	// ICSPath is where book writes the calendar invitation; empty skips it.
	ICSPath  string
	Days     int
	Schedule string
}

// parseFlags parses the global flags and splits off the command.
func parseFlags(args []string, stderr io.Writer) (flags, error) {
	fs := flag.NewFlagSet("booking-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("d", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: booking-cli [-d] <slots|book|week|watch> [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return flags{}, errors.Join(errUsage, err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flags{}, fmt.Errorf("%w: a command is required", errUsage)
	}

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
		}
	}

	return flags{
		Debug:   *debug,
		Command: fs.Arg(0),
		Args:    fs.Args()[1:],
	}, nil
}

// parseCommandFlags parses the flags of command. today is the default date.
func parseCommandFlags(command string, args []string, env environment, today string, stderr io.Writer) (commandOptions, error) {
	opts := commandOptions{}
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Username, "user", env.Username, "host username whose calendar to use")

	switch command {
	case commandSlots:
		fs.StringVar(&opts.Date, "date", today, "date to list (YYYY-MM-DD)")
	case commandBook:
		fs.StringVar(&opts.Date, "date", today, "date of the slot (YYYY-MM-DD)")
		fs.StringVar(&opts.Time, "time", "", "slot start time (HH:MM, 24-hour)")
		fs.StringVar(&opts.Name, "name", "", "attendee name")
		fs.StringVar(&opts.Email, "email", "", "attendee email")
		fs.StringVar(&opts.Notes, "notes", "", "notes for the host")
		fs.StringVar(&opts.ICSPath, "ics", "", "write an iCalendar invitation for the booking to this file")
	case commandWeek:
		fs.StringVar(&opts.Date, "from", today, "first date of the window (YYYY-MM-DD)")
		fs.IntVar(&opts.Days, "days", 0, "number of days to summarize")
	case commandWatch:
		fs.StringVar(&opts.Date, "date", today, "date to watch (YYYY-MM-DD)")
		fs.StringVar(&opts.Schedule, "schedule", defaultWatchSchedule, "cron spec for refreshing availability")
	default:
		return opts, fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	if err := fs.Parse(args); err != nil {
		return opts, errors.Join(errUsage, err)
	}

	opts.Username = strings.TrimSpace(opts.Username)
	if opts.Username == "" {
		return opts, fmt.Errorf("%w: %s: -user or BOOKING_USERNAME is required", errUsage, command)
	}
	if command == commandBook && strings.TrimSpace(opts.Time) == "" {
		return opts, fmt.Errorf("%w: book: -time is required", errUsage)
	}
	return opts, nil
}

// parseEnv parses environment variables for the booking CLI
func parseEnv() environment {
	return environment{
		CalendarAPIURL:     utils.CoalesceString(os.Getenv("CALENDAR_API_URL"), constants.DefaultCalendarAPIURL),
		CalendarAPITimeout: durationFromEnv("CALENDAR_API_TIMEOUT", constants.DefaultClientTimeout),
		Service: service.ServiceConfig{
			Retry: service.RetryPolicy{
				InitialBackoff: durationFromEnv("AVAILABILITY_RETRY_BACKOFF", constants.DefaultRetryBackoff),
			},
			OverviewWorkers: intFromEnv("OVERVIEW_WORKERS", constants.DefaultOverviewWorkers),
		},
		NATSURL:  os.Getenv("NATS_URL"),
		Username: os.Getenv("BOOKING_USERNAME"),
	}
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "name", name, "value", raw, "default", fallback.String())
		return fallback
	}
	return d
}

func intFromEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "name", name, "value", raw, "default", fallback)
		return fallback
	}
	return n
}
