package service

import (
	"testing"
	"time"

	planEntity "github.com/gekaluck/couple-moments-sub000/modules/plan/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildEventPayloadTimedPlanWithExplicitEnd(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	plan := &planEntity.Plan{
		Title:    "Dinner at Luigi's",
		StartsAt: start,
		EndsAt:   &end,
	}

	event := buildEventPayload(plan, nil)
	require.NotNil(t, event.Start)
	require.NotNil(t, event.End)
	assert.Equal(t, start.Format(time.RFC3339), event.Start.DateTime)
	assert.Equal(t, end.Format(time.RFC3339), event.End.DateTime)
	assert.Empty(t, event.Start.Date)
}

func TestBuildEventPayloadTimedPlanDefaultsDuration(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	plan := &planEntity.Plan{Title: "Movie night", StartsAt: start}

	event := buildEventPayload(plan, nil)
	assert.Equal(t, start.Add(2*time.Hour).Format(time.RFC3339), event.End.DateTime)
}

func TestBuildEventPayloadAnytimePlanSingleDay(t *testing.T) {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	plan := &planEntity.Plan{Title: "Anniversary", StartsAt: start, Anytime: true}

	event := buildEventPayload(plan, nil)
	assert.Equal(t, "2026-03-14", event.Start.Date)
	// Provider all-day ends are exclusive.
	assert.Equal(t, "2026-03-15", event.End.Date)
	assert.Empty(t, event.Start.DateTime)
}

func TestBuildEventPayloadAnytimePlanMultiDay(t *testing.T) {
	start := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
	plan := &planEntity.Plan{Title: "Weekend away", StartsAt: start, EndsAt: &end, Anytime: true}

	event := buildEventPayload(plan, nil)
	assert.Equal(t, "2026-07-03", event.Start.Date)
	assert.Equal(t, "2026-07-06", event.End.Date)
}

func TestBuildEventPayloadLocation(t *testing.T) {
	plan := &planEntity.Plan{
		Title:        "Picnic",
		StartsAt:     time.Now(),
		PlaceName:    strPtr("Riverside Park"),
		PlaceAddress: strPtr("12 Embankment Rd"),
	}
	assert.Equal(t, "Riverside Park, 12 Embankment Rd", buildEventPayload(plan, nil).Location)

	plan.PlaceAddress = nil
	assert.Equal(t, "Riverside Park", buildEventPayload(plan, nil).Location)

	plan.PlaceName = nil
	plan.PlaceAddress = strPtr("12 Embankment Rd")
	assert.Equal(t, "12 Embankment Rd", buildEventPayload(plan, nil).Location)

	plan.PlaceAddress = nil
	assert.Empty(t, buildEventPayload(plan, nil).Location)
}

func TestAttendeeEmailsExcludesOrganizerAndDuplicates(t *testing.T) {
	organizer := uuid.New()
	partner := uuid.New()
	members := []planEntity.SpaceMember{
		{UserID: organizer, Email: "me@example.com"},
		{UserID: partner, Email: "Partner@Example.com"},
		{UserID: partner, Email: "partner@example.com"},
		{UserID: uuid.New(), Email: "  "},
	}

	emails := attendeeEmails(members, organizer)
	assert.Equal(t, []string{"partner@example.com"}, emails)
}
