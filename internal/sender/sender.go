package sender

import (
	"context"

	"github.com/artistbooking/notification-service/internal/domain"
)

// Outcome is the aggregated result of one sender call. For single-recipient
// channels Fulfilled/Total are 0/0 or 1/1; for push fan-out they count
// per-endpoint deliveries.
type Outcome struct {
	Fulfilled int
	Total     int
	Detail    string
}

// Sender delivers one job over its channel. Implementations wrap a
// third-party provider; mocking this interface in tests gives full control
// over provider behaviour without real network calls.
//
// The error contract differs per channel: email and configured SMS propagate
// provider failures; unconfigured SMS and push fan-out report success with
// counts instead (see the concrete types).
type Sender interface {
	Send(ctx context.Context, job *domain.Job) (*Outcome, error)
}
