package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artistbooking/notification-service/internal/domain"
)

// MemoryRegistry is a hand-written, in-memory implementation of
// SubscriptionStore and TemplateStore used in unit tests.
// No mock-generation library needed.
type MemoryRegistry struct {
	mu        sync.RWMutex
	subs      map[string]domain.Subscription // keyed by endpoint
	templates map[string]domain.Template     // keyed by id

	// Optional error overrides — set in tests to simulate failure paths.
	GetErr error
	PutErr error
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		subs:      make(map[string]domain.Subscription),
		templates: make(map[string]domain.Template),
	}
}

func (m *MemoryRegistry) Get(_ context.Context, userID string) ([]domain.Subscription, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []domain.Subscription{}
	for _, s := range m.subs {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *MemoryRegistry) Put(_ context.Context, userID string, sub domain.Subscription) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sub.ID = uuid.New().String()
	sub.UserID = userID
	sub.CreatedAt = time.Now().UTC()
	m.subs[sub.Endpoint] = sub
	return sub.ID, nil
}

func (m *MemoryRegistry) Delete(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, endpoint)
	return nil
}

func (m *MemoryRegistry) List(_ context.Context, userID string) ([]domain.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []domain.Template{}
	for _, t := range m.templates {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MemoryRegistry) Save(_ context.Context, userID string, tpl domain.Template) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	tpl.ID = uuid.New().String()
	tpl.UserID = userID
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	m.templates[tpl.ID] = tpl
	return tpl.ID, nil
}

var (
	_ SubscriptionStore = (*MemoryRegistry)(nil)
	_ TemplateStore     = (*MemoryRegistry)(nil)
)
