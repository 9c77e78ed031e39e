package service

import (
	"strings"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/constants"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	planEntity "github.com/gekaluck/couple-moments-sub000/modules/plan/entity"

	"github.com/google/uuid"
)

const allDayDateLayout = "2006-01-02"

// buildEventPayload maps a plan onto the provider event shape.
//
// Timed plans become timed events; a missing end defaults to start plus two
// hours. Anytime plans become all-day events; the provider treats the end
// date as exclusive, so we add one day to the last day of the plan.
func buildEventPayload(plan *planEntity.Plan, attendees []string) *googlecal.Event {
	event := &googlecal.Event{
		Summary:  plan.Title,
		Location: buildLocation(plan),
	}
	if plan.Description != nil {
		event.Description = *plan.Description
	}

	for _, email := range attendees {
		event.Attendees = append(event.Attendees, googlecal.Attendee{Email: email})
	}

	if plan.Anytime {
		endBase := plan.StartsAt
		if plan.EndsAt != nil {
			endBase = *plan.EndsAt
		}
		event.Start = &googlecal.EventDateTime{Date: plan.StartsAt.Format(allDayDateLayout)}
		event.End = &googlecal.EventDateTime{Date: endBase.AddDate(0, 0, 1).Format(allDayDateLayout)}
		return event
	}

	end := plan.StartsAt.Add(constants.DefaultEventDuration)
	if plan.EndsAt != nil {
		end = *plan.EndsAt
	}
	event.Start = &googlecal.EventDateTime{DateTime: plan.StartsAt.Format(time.RFC3339)}
	event.End = &googlecal.EventDateTime{DateTime: end.Format(time.RFC3339)}
	return event
}

func buildLocation(plan *planEntity.Plan) string {
	var parts []string
	if plan.PlaceName != nil && *plan.PlaceName != "" {
		parts = append(parts, *plan.PlaceName)
	}
	if plan.PlaceAddress != nil && *plan.PlaceAddress != "" {
		parts = append(parts, *plan.PlaceAddress)
	}
	return strings.Join(parts, ", ")
}

// attendeeEmails picks every other member of the plan's shared space,
// deduplicated by lowercase email, excluding the organizer themselves.
func attendeeEmails(members []planEntity.SpaceMember, organizerID uuid.UUID) []string {
	seen := make(map[string]bool, len(members))
	var emails []string
	for _, member := range members {
		if member.UserID == organizerID {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(member.Email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails
}
