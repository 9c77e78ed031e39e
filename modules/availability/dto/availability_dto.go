package dto

import (
	"time"

	"github.com/gekaluck/couple-moments-sub000/modules/availability/entity"

	"github.com/google/uuid"
)

type BlockResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	SourceTag string    `json:"source_tag"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

type BlockListResponse struct {
	From   time.Time       `json:"from"`
	To     time.Time       `json:"to"`
	Blocks []BlockResponse `json:"blocks"`
}

type SyncStateResponse struct {
	AccountID    uuid.UUID  `json:"account_id"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	LastError    *string    `json:"last_error,omitempty"`
	FailureCount int        `json:"failure_count"`
}

func ToBlockResponse(b entity.AvailabilityBlock) BlockResponse {
	return BlockResponse{
		UserID:    b.UserID,
		SourceTag: b.SourceTag,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	}
}
