package dto

import "time"

// ConnectURLResponse is returned to the web layer to start the provider
// consent redirect.
type ConnectURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type AccountResponse struct {
	ID           string     `json:"id"`
	Provider     string     `json:"provider"`
	AccountEmail string     `json:"account_email"`
	Connected    bool       `json:"connected"`
	ConnectedAt  time.Time  `json:"connected_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
