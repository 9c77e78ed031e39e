package constants

import "time"

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// DefaultTimeout bounds outbound provider calls and request-scoped work.
const DefaultTimeout = 10 * time.Second

// TokenRefreshMargin is how close to expiry an access credential may get
// before it is refreshed. The margin keeps a credential from expiring
// provider-side between local validation and the remote call.
const TokenRefreshMargin = 5 * time.Minute

// Provider retry policy: RetryMaxAttempts total attempts, exponential
// backoff doubling from RetryBaseDelay.
const (
	RetryMaxAttempts = 3
	RetryBaseDelay   = 500 * time.Millisecond
)

// AvailabilityWindowDays is the default free/busy lookahead window.
const AvailabilityWindowDays = 90

// DefaultEventDuration is used when a timed plan has no explicit end.
const DefaultEventDuration = 2 * time.Hour

// OAuthStateTTL bounds how long a pending connect state nonce stays valid.
const OAuthStateTTL = 10 * time.Minute

// WorkerConcurrency is the background sync worker pool size.
const WorkerConcurrency = 10
