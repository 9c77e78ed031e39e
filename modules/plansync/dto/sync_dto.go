package dto

import (
	goerrors "errors"

	"github.com/gekaluck/couple-moments-sub000/core/errors"

	"github.com/google/uuid"
)

// SyncResult is the caller-facing shape of every plan sync operation. The
// web layer uses Code to pick retry-prompt vs hard-failure messaging, and
// Recovered/Skipped to show informational rather than error toasts.
type SyncResult struct {
	Success         bool             `json:"success"`
	Code            errors.ErrorCode `json:"code,omitempty"`
	Error           string           `json:"error,omitempty"`
	ExternalEventID string           `json:"external_event_id,omitempty"`
	Recovered       bool             `json:"recovered,omitempty"`
	Skipped         bool             `json:"skipped,omitempty"`
}

// DeleteContext captures everything cancellation needs before the local
// plan row is deleted, because cancel runs after the plan is gone.
type DeleteContext struct {
	AccountID     uuid.UUID `json:"account_id"`
	CalendarID    string    `json:"calendar_id"`
	RemoteEventID string    `json:"remote_event_id"`
	// Revoked snapshots the account state at capture time; a revoked
	// account means the remote side is presumed inaccessible and the
	// delete call is skipped.
	Revoked bool `json:"revoked"`
}

func Ok(externalEventID string) *SyncResult {
	return &SyncResult{Success: true, ExternalEventID: externalEventID}
}

func Recovered(externalEventID string) *SyncResult {
	return &SyncResult{Success: true, ExternalEventID: externalEventID, Recovered: true}
}

func Skip() *SyncResult {
	return &SyncResult{Success: true, Skipped: true}
}

func Fail(code errors.ErrorCode, message string) *SyncResult {
	return &SyncResult{Success: false, Code: code, Error: message}
}

// FailFrom flattens an error into a result, keeping the AppError code from
// anywhere in its chain.
func FailFrom(err error) *SyncResult {
	var ae *errors.AppError
	if goerrors.As(err, &ae) {
		return &SyncResult{Success: false, Code: ae.Code, Error: ae.Message}
	}
	return &SyncResult{Success: false, Code: errors.ErrInternalServer, Error: err.Error()}
}
