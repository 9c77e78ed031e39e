package dto

type CalendarResponse struct {
	ID              string  `json:"id"`
	RemoteID        string  `json:"remote_id"`
	Summary         string  `json:"summary"`
	IsPrimary       bool    `json:"is_primary"`
	Selected        bool    `json:"selected"`
	ForegroundColor *string `json:"foreground_color,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
}

type CalendarListResponse struct {
	Calendars []CalendarResponse `json:"calendars"`
}

type SetSelectedRequest struct {
	Selected bool `json:"selected"`
}
