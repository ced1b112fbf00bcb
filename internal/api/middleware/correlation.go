package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-ID"

type correlationKey struct{}

// CorrelationID tags every request with a correlation ID: the caller's
// X-Correlation-ID header when present, a fresh UUID otherwise. The ID rides
// the request context and is echoed on the response, so a booking-platform
// client can tie a dispatch request to the log lines it produced.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), correlationKey{}, id),
		))
	})
}

// GetCorrelationID returns the request's correlation ID, or "" when the
// middleware did not run (direct handler tests).
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
