package entity

import (
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/entity"

	"github.com/google/uuid"
)

const ProviderGoogle = "google"

// ConnectedAccount is one external-provider identity belonging to one local
// user. Credential fields hold vault-sealed blobs, never plaintext. A
// revoked account is retained for audit but never used for remote calls.
type ConnectedAccount struct {
	entity.BaseEntity
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	Provider       string     `db:"provider" json:"provider"`
	AccountEmail   string     `db:"account_email" json:"account_email"`
	AccessCipher   []byte     `db:"access_cipher" json:"-"`
	RefreshCipher  []byte     `db:"refresh_cipher" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"token_expires_at"`
	Scope          string     `db:"scope" json:"scope"`
	RevokedAt      *time.Time `db:"revoked_at" json:"revoked_at"`
}

func (a *ConnectedAccount) Revoked() bool {
	return a.RevokedAt != nil
}
