package googlecal

import "time"

// EventDateTime carries either a date-only value (all-day events) or a
// precise RFC3339 instant, matching the provider's wire shape.
type EventDateTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// Event is the provider event payload for insert/update and the shape
// returned on success.
type Event struct {
	ID          string         `json:"id,omitempty"`
	Etag        string         `json:"etag,omitempty"`
	Status      string         `json:"status,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       *EventDateTime `json:"start,omitempty"`
	End         *EventDateTime `json:"end,omitempty"`
	Attendees   []Attendee     `json:"attendees,omitempty"`
}

// CalendarListEntry is one calendar visible to the connected account.
type CalendarListEntry struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	Primary         bool   `json:"primary,omitempty"`
	ForegroundColor string `json:"foregroundColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// BusyInterval is one busy block from a free/busy query.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Profile is the subset of the userinfo endpoint we keep.
type Profile struct {
	Email string `json:"email"`
}
