package entity

import (
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/entity"

	"github.com/google/uuid"
)

// PlanEventLink binds exactly one local plan to exactly one remote event.
// Its existence means the remote event is believed to exist; its absence
// means the plan is unsynced. There is deliberately no status column: the
// row either exists or it does not, so a half-synced state is never
// observable.
type PlanEventLink struct {
	entity.BaseEntity
	PlanID           uuid.UUID `db:"plan_id" json:"plan_id"`
	AccountID        uuid.UUID `db:"account_id" json:"account_id"`
	RemoteCalendarID string    `db:"remote_calendar_id" json:"remote_calendar_id"`
	RemoteEventID    string    `db:"remote_event_id" json:"remote_event_id"`
	Etag             *string   `db:"etag" json:"etag,omitempty"`
	LastSyncedAt     time.Time `db:"last_synced_at" json:"last_synced_at"`
}
