package entity

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a read-only view of the plans table owned by the planning web
// layer. This subsystem never writes to it.
type Plan struct {
	ID           uuid.UUID  `db:"id"`
	SpaceID      uuid.UUID  `db:"space_id"`
	CreatorID    uuid.UUID  `db:"creator_id"`
	Title        string     `db:"title"`
	Description  *string    `db:"description"`
	PlaceName    *string    `db:"place_name"`
	PlaceAddress *string    `db:"place_address"`
	StartsAt     time.Time  `db:"starts_at"`
	EndsAt       *time.Time `db:"ends_at"`
	// Anytime marks a date-only plan with no clock time; it mirrors to an
	// all-day provider event.
	Anytime bool `db:"anytime"`
}

// SpaceMember is a read-only view of one member of the plan's shared space.
type SpaceMember struct {
	UserID uuid.UUID `db:"user_id"`
	Email  string    `db:"email"`
}
