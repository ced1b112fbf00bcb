package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidChannel    = errors.New("invalid channel: must be email, sms, or push")
	ErrInvalidRecipient  = errors.New("recipient must not be empty")
	ErrEmptyPayload      = errors.New("notification payload must not be empty")
	ErrPayloadMismatch   = errors.New("job payload does not match its channel")
	ErrBrokerDegraded    = errors.New("queue broker is degraded")
	ErrBrokerNotReady    = errors.New("queue broker has not connected yet")
	ErrSenderUnavailable = errors.New("no sender registered for channel")
)
