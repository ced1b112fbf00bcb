package registry

import (
	"context"

	"github.com/artistbooking/notification-service/internal/domain"
)

// SubscriptionStore defines the read/write contract the dispatch engine and
// API layer need for push endpoints. The mongo implementation is in mongo.go;
// tests use the in-memory implementation (memory.go).
//
// All operations tolerate an absent backing store: they degrade to
// empty-result/no-op rather than raising, so push simply delivers to zero
// endpoints while the rest of the system keeps functioning.
type SubscriptionStore interface {
	// Get returns every subscription registered for the user. Degraded mode
	// returns an empty slice, nil error.
	Get(ctx context.Context, userID string) ([]domain.Subscription, error)

	// Put stores a subscription, last-write-wins on endpoint identity, and
	// returns its id. Degraded mode returns "" with nil error.
	Put(ctx context.Context, userID string, sub domain.Subscription) (string, error)

	// Delete removes the subscription with the given endpoint, if any.
	Delete(ctx context.Context, endpoint string) error
}

// TemplateStore persists user-owned notification templates.
// Same degrade policy as SubscriptionStore.
type TemplateStore interface {
	List(ctx context.Context, userID string) ([]domain.Template, error)
	Save(ctx context.Context, userID string, tpl domain.Template) (string, error)
}
