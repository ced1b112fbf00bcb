package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestCorrelationID_EchoesCallerHeader(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "booking-42")
	rec := httptest.NewRecorder()
	CorrelationID(next).ServeHTTP(rec, req)

	if seen != "booking-42" {
		t.Fatalf("expected caller id on context, got %q", seen)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != "booking-42" {
		t.Fatalf("expected caller id echoed, got %q", got)
	}
}

func TestCorrelationID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	CorrelationID(next).ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("expected a generated correlation id")
	}
	if rec.Header().Get("X-Correlation-ID") != seen {
		t.Fatal("expected generated id echoed on the response")
	}
}

func TestChannelFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/notifications/email", "email"},
		{"/api/v1/notifications/sms", "sms"},
		{"/api/v1/notifications/push", "push"},
		{"/api/v1/notifications/appointment-confirmation", ""},
		{"/api/v1/subscriptions", ""},
		{"/health", ""},
	}
	for _, tc := range tests {
		if got := channelFromPath(tc.path); got != tc.want {
			t.Fatalf("channelFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestRequestLogger_RecordsHandlerStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/sms", nil)
	RequestLogger(zap.NewNop())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected wrapped status to pass through, got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Fatalf("expected body to pass through, got %q", rec.Body.String())
	}
}
