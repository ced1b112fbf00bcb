package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// statusRecorder captures what the handler wrote so the log line can carry
// status and response size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

// RequestLogger emits one structured line per completed request. Notification
// sends get a channel field derived from the route, so log queries can slice
// traffic by email/sms/push without parsing paths.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("latency", time.Since(start)),
				zap.String("correlation_id", GetCorrelationID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if ch := channelFromPath(r.URL.Path); ch != "" {
				fields = append(fields, zap.String("channel", ch))
			}
			logger.Info("http request", fields...)
		})
	}
}

func channelFromPath(path string) string {
	const prefix = "/api/v1/notifications/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	switch ch := strings.TrimPrefix(path, prefix); ch {
	case "email", "sms", "push":
		return ch
	}
	return ""
}
