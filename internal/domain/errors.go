package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidID         = errors.New("notification id must be numeric or a UUID")
	ErrMissingMessage    = errors.New("message parameter is required")
	ErrNoKey             = errors.New("publish failed, no key returned")
	ErrBrokerUnavailable = errors.New("broker unavailable")
	ErrSerialization     = errors.New("serialization failure")
	ErrRejected          = errors.New("rejected by broker")
	ErrRateLimited       = errors.New("destination rate limit exceeded")
)
