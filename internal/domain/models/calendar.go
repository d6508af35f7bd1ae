// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// TimeSlot is a bookable interval offered by a host.
type TimeSlot struct {
	// Time is the wall-clock start ("HH:MM", 24-hour) in the host's timezone.
	Time string `json:"time" validate:"required,clock"`
	// Date is the calendar date ("YYYY-MM-DD").
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	// Start and End are absolute instants (RFC 3339).
	Start    string `json:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End      string `json:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Duration int    `json:"duration" validate:"gt=0"`
}

// CalendarInfo is the host-level scheduling configuration returned with availability.
type CalendarInfo struct {
	DefaultDuration  int               `json:"default_duration"`
	MeetingPlatforms []MeetingPlatform `json:"meeting_platforms"`
	Timezone         string            `json:"timezone"`
	BufferTime       int               `json:"buffer_time"`
}

// MeetingPlatform is a conferencing platform a host supports.
type MeetingPlatform struct {
	Type      string `json:"type"`
	Available bool   `json:"available"`
	Link      string `json:"link,omitempty"`
	Value     string `json:"value,omitempty"`
}

// UserInfo is the host profile shown on the booking page.
type UserInfo struct {
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	ProfilePic       *string  `json:"profile_pic"`
	UserType         string   `json:"user_type"`
	OrganisationName *string  `json:"organisation_name"`
	OrganisationURL  *string  `json:"organisation_url"`
	LinkedinURL      *string  `json:"linkedin_url"`
	Platforms        []string `json:"platforms"`
}

// Clone returns a deep copy of u.
func (u UserInfo) Clone() UserInfo {
	u.ProfilePic = cloneString(u.ProfilePic)
	u.OrganisationName = cloneString(u.OrganisationName)
	u.OrganisationURL = cloneString(u.OrganisationURL)
	u.LinkedinURL = cloneString(u.LinkedinURL)
	if u.Platforms != nil {
		u.Platforms = append([]string(nil), u.Platforms...)
	}
	return u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Availability is the data section of an availability response.
type Availability struct {
	Availability []TimeSlot   `json:"availability"`
	CalendarInfo CalendarInfo `json:"calendar_info"`
	User         UserInfo     `json:"user"`
	BufferTime   int          `json:"buffer_time"`
	Timezone     string       `json:"timezone"`
}

// AvailabilityResponse is the envelope returned by the availability endpoint.
type AvailabilityResponse struct {
	Success bool         `json:"success"`
	Data    Availability `json:"data"`
	Message string       `json:"message"`
}

// Platform constants used when no platform list is available.
const (
	PlatformZoom       = "zoom"
	PlatformGoogleMeet = "google_meet"
)

// PreferredPlatform returns the platform a booking should use: the first
// available one, else the first listed, else Zoom.
func (c CalendarInfo) PreferredPlatform() string {
	for _, p := range c.MeetingPlatforms {
		if p.Available && p.Type != "" {
			return p.Type
		}
	}
	if len(c.MeetingPlatforms) > 0 && c.MeetingPlatforms[0].Type != "" {
		return c.MeetingPlatforms[0].Type
	}
	return PlatformZoom
}
