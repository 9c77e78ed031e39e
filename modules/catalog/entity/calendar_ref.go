package entity

import (
	"github.com/gekaluck/couple-moments-sub000/core/entity"

	"github.com/google/uuid"
)

// CalendarRef is one remote calendar visible to a connected account.
// Existence and metadata follow the provider; Selected is locally owned and
// survives reconciliation.
type CalendarRef struct {
	entity.BaseEntity
	AccountID       uuid.UUID `db:"account_id" json:"account_id"`
	RemoteID        string    `db:"remote_id" json:"remote_id"`
	Summary         string    `db:"summary" json:"summary"`
	IsPrimary       bool      `db:"is_primary" json:"is_primary"`
	Selected        bool      `db:"selected" json:"selected"`
	ForegroundColor *string   `db:"foreground_color" json:"foreground_color,omitempty"`
	BackgroundColor *string   `db:"background_color" json:"background_color,omitempty"`
}
