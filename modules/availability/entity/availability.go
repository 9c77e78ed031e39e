package entity

import (
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/entity"

	"github.com/google/uuid"
)

// AvailabilityBlock is one busy interval mirrored from an external calendar.
// Blocks are replaced wholesale per account on every sync, so they carry no
// remote identity beyond the source tag.
type AvailabilityBlock struct {
	entity.BaseEntity
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	// SourceTag names the originating calendar, e.g. "google:team-standups".
	SourceTag string    `db:"source_tag" json:"source_tag"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
}

// AvailabilitySyncState tracks the last sync outcome per connected account.
type AvailabilitySyncState struct {
	AccountID    uuid.UUID  `db:"account_id" json:"account_id"`
	LastSyncedAt *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
	LastError    *string    `db:"last_error" json:"last_error,omitempty"`
	FailureCount int        `db:"failure_count" json:"failure_count"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
