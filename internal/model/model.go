// Package model defines the core domain types for the conference catalog.
package model

import (
	"fmt"
	"time"
)

// SessionType is the closed enumeration of session kinds.
type SessionType string

const (
	SessionWorkshop SessionType = "Workshop"
	SessionLecture  SessionType = "Lecture"
	SessionKeynote  SessionType = "Keynote"
)

// ParseSessionType validates a session type string, defaulting the empty
// string to Workshop.
func ParseSessionType(s string) (SessionType, error) {
	switch SessionType(s) {
	case "":
		return SessionWorkshop, nil
	case SessionWorkshop, SessionLecture, SessionKeynote:
		return SessionType(s), nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// Profile is a user's stored profile. It carries the user's registration and
// wishlist sets; both are unordered and hold no duplicates.
type Profile struct {
	UserID                 string   `json:"user_id"`
	DisplayName            string   `json:"display_name"`
	MainEmail              string   `json:"main_email"`
	ConferenceKeysToAttend []string `json:"conference_keys_to_attend"`
	WishlistSessionKeys    []string `json:"wishlist_session_keys"`
}

// Conference is a bookable conference created by an organizer.
type Conference struct {
	Key             string     `json:"key"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	OrganizerUserID string     `json:"organizer_user_id"`
	OrganizerName   string     `json:"organizer_name,omitempty"`
	Topics          []string   `json:"topics"`
	City            string     `json:"city"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Month           int        `json:"month"`
	MaxAttendees    int        `json:"max_attendees"`
	SeatsAvailable  int        `json:"seats_available"`
}

// Session is a talk or workshop scheduled within a conference.
type Session struct {
	Key               string      `json:"key"`
	ConferenceKey     string      `json:"conference_key"`
	Name              string      `json:"name"`
	Highlights        string      `json:"highlights"`
	Speaker           string      `json:"speaker"`
	StartTime         *time.Time  `json:"start_time,omitempty"`
	DurationInMinutes int         `json:"duration_in_minutes"`
	TypeOfSession     SessionType `json:"type_of_session"`
	Date              *time.Time  `json:"date,omitempty"`
	Location          string      `json:"location"`
}

// CreateConferenceRequest is the payload for creating a conference.
// Dates are strings in "2006-01-02" form.
type CreateConferenceRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Topics       []string `json:"topics"`
	City         string   `json:"city"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	MaxAttendees int      `json:"max_attendees"`
}

// UpdateConferenceRequest carries a partial conference update. Nil fields
// are left untouched.
type UpdateConferenceRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Topics       []string `json:"topics"`
	City         *string  `json:"city"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	MaxAttendees *int     `json:"max_attendees"`
}

// CreateSessionRequest is the payload for adding a session to a conference.
// Date is "2006-01-02"; StartTime is 24-hour "15:04".
type CreateSessionRequest struct {
	Name              string `json:"name"`
	Highlights        string `json:"highlights"`
	Speaker           string `json:"speaker"`
	StartTime         string `json:"start_time"`
	DurationInMinutes int    `json:"duration_in_minutes"`
	TypeOfSession     string `json:"type_of_session"`
	Date              string `json:"date"`
	Location          string `json:"location"`
}

// SaveProfileRequest updates the caller's display name.
type SaveProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// FilterRequest is one untrusted (field, operator, value) triple.
type FilterRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// QueryRequest is the payload for the conference/session query endpoints.
type QueryRequest struct {
	Filters []FilterRequest `json:"filters"`
}

// BooleanResponse reports the outcome of a registration or wishlist mutation.
type BooleanResponse struct {
	Data bool `json:"data"`
}

// StringResponse wraps a single derived string (announcement, featured speaker).
type StringResponse struct {
	Data string `json:"data"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ParseDate parses a "2006-01-02" date string. Longer strings are truncated
// to the date prefix first, matching lenient client input.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseClock parses a 24-hour "15:04" time-of-day string.
func ParseClock(s string) (time.Time, error) {
	if len(s) > len(clockLayout) {
		s = s[:len(clockLayout)]
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t, nil
}

// FormatDate renders a date pointer as "2006-01-02", or "" when nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatClock renders a time-of-day pointer as "15:04", or "" when nil.
func FormatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(clockLayout)
}
