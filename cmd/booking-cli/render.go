// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/service"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/utils"
)

// renderAvailability prints the slot list of state grouped by time of day.
func renderAvailability(w io.Writer, state service.WorkflowState) {
	switch state.Availability {
	case service.AvailabilityIdle, service.AvailabilityLoading:
		fmt.Fprintln(w, "Loading available times...")
		return
	case service.AvailabilityErrored:
		fmt.Fprintf(w, "Error loading calendar: %s\n", state.AvailabilityError)
		return
	}

	fmt.Fprintf(w, "Available times for %s with %s (%s)\n",
		models.FormatLongDate(state.Date), state.Username, utils.CoalesceString(state.Timezone, "UTC"))
	if len(state.Slots) == 0 {
		fmt.Fprintln(w, "No availability on this date")
		fmt.Fprintln(w, "Please select another date or check back later.")
		return
	}

	for _, period := range models.Periods {
		slots := state.SlotsByPeriod[period]
		if len(slots) == 0 {
			continue
		}
		times := make([]string, 0, len(slots))
		for _, slot := range slots {
			times = append(times, models.FormatDisplayTime(slot))
		}
		fmt.Fprintf(w, "  %-10s %s\n", string(period)+":", strings.Join(times, ", "))
	}
}

// renderNotification prints one workflow notification as a single line.
func renderNotification(w io.Writer, n models.Notification) {
	marker := "*"
	if n.Variant == models.VariantDestructive {
		marker = "!"
	}
	if n.Description == "" {
		fmt.Fprintf(w, "%s %s\n", marker, n.Title)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", marker, n.Title, n.Description)
}

// renderBooking prints the confirmation of a booking.
func renderBooking(w io.Writer, booking models.Booking) {
	fmt.Fprintln(w, "Booking Confirmed!")
	fmt.Fprintln(w, "Your meeting has been successfully scheduled.")
	fmt.Fprintf(w, "  Date & Time:  %s\n", models.FormatLongDate(booking.Date))
	fmt.Fprintf(w, "                %s (%d minutes)\n", models.FormatClock(booking.StartTime), booking.Duration)
	if booking.Platform != "" {
		fmt.Fprintf(w, "  Platform:     %s\n", booking.Platform)
	}
	if booking.MeetingLink != "" {
		fmt.Fprintf(w, "  Meeting Link: %s\n", booking.MeetingLink)
	}
	fmt.Fprintf(w, "  Booking ID:   %s\n", booking.BookingUID)
}

// renderOverview prints one line per date of the overview.
func renderOverview(w io.Writer, username string, summaries []service.DaySummary) {
	fmt.Fprintf(w, "Availability for %s\n", username)
	for _, day := range summaries {
		label := day.Date
		if t, err := models.ParseDate(day.Date); err == nil {
			label = t.Format("Mon, Jan 2")
		}

		switch {
		case day.Err != nil:
			fmt.Fprintf(w, "  %-12s error: %s\n", label, domain.Reason(day.Err))
		case day.Slots == 0:
			fmt.Fprintf(w, "  %-12s no availability\n", label)
		default:
			var parts []string
			for _, period := range models.Periods {
				if n := day.ByPeriod[period]; n > 0 {
					parts = append(parts, fmt.Sprintf("%s %d", period, n))
				}
			}
			fmt.Fprintf(w, "  %-12s %d slots (%s)\n", label, day.Slots, strings.Join(parts, ", "))
		}
	}
}
