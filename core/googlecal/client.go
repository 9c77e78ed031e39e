package googlecal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"
)

const (
	calendarAPIBase = "https://www.googleapis.com/calendar/v3"
	userinfoAPI     = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Client talks to the Google Calendar REST API with a caller-supplied bearer
// credential. It owns request/response plumbing and turns every non-2xx
// response into a typed *APIError; it never refreshes credentials itself.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, rawURL, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// GetProfile fetches the provider-side identity of the credential owner.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, userinfoAPI, accessToken, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListCalendars returns the account's current calendar list. The list is
// small in practice; pagination pages are followed until exhausted.
func (c *Client) ListCalendars(ctx context.Context, accessToken string) ([]CalendarListEntry, error) {
	var all []CalendarListEntry
	pageToken := ""

	for {
		endpoint := calendarAPIBase + "/users/me/calendarList"
		if pageToken != "" {
			endpoint += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var page struct {
			Items         []CalendarListEntry `json:"items"`
			NextPageToken string              `json:"nextPageToken"`
		}
		if err := c.do(ctx, http.MethodGet, endpoint, accessToken, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// InsertEvent creates an event on the given calendar and returns the
// provider's stored representation (id and etag populated).
func (c *Client) InsertEvent(ctx context.Context, accessToken, calendarID string, event *Event) (*Event, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", calendarAPIBase, url.PathEscape(calendarID))
	var created Event
	if err := c.do(ctx, http.MethodPost, endpoint, accessToken, event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent replaces the addressed event's mutable fields.
func (c *Client) UpdateEvent(ctx context.Context, accessToken, calendarID, eventID string, event *Event) (*Event, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		calendarAPIBase, url.PathEscape(calendarID), url.PathEscape(eventID))
	var updated Event
	if err := c.do(ctx, http.MethodPut, endpoint, accessToken, event, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEvent removes the addressed event. A not-found response is returned
// as *APIError for the caller to treat as already-deleted.
func (c *Client) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		calendarAPIBase, url.PathEscape(calendarID), url.PathEscape(eventID))
	return c.do(ctx, http.MethodDelete, endpoint, accessToken, nil, nil)
}

// FreeBusy queries busy intervals for the given calendar ids inside the
// window and returns them keyed by calendar id.
func (c *Client) FreeBusy(ctx context.Context, accessToken string, calendarIDs []string, windowStart, windowEnd time.Time) (map[string][]BusyInterval, error) {
	items := make([]map[string]string, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		items = append(items, map[string]string{"id": id})
	}

	request := map[string]any{
		"timeMin": windowStart.Format(time.RFC3339),
		"timeMax": windowEnd.Format(time.RFC3339),
		"items":   items,
	}

	var response struct {
		Calendars map[string]struct {
			Busy []struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}

	if err := c.do(ctx, http.MethodPost, calendarAPIBase+"/freeBusy", accessToken, request, &response); err != nil {
		return nil, err
	}

	busy := make(map[string][]BusyInterval, len(response.Calendars))
	for calID, cal := range response.Calendars {
		intervals := make([]BusyInterval, 0, len(cal.Busy))
		for _, b := range cal.Busy {
			intervals = append(intervals, BusyInterval{Start: b.Start, End: b.End})
		}
		busy[calID] = intervals
	}
	return busy, nil
}
