package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
)

// MockLoadingEventRepository is an in-memory implementation of LoadingEventRepository for testing
type MockLoadingEventRepository struct {
	mu     sync.Mutex
	Events map[string][]persistence.LoadingEventEntry // key: session_id
	LogErr error
}

// NewMockLoadingEventRepository creates a new mock loading event repository
func NewMockLoadingEventRepository() *MockLoadingEventRepository {
	return &MockLoadingEventRepository{
		Events: make(map[string][]persistence.LoadingEventEntry),
	}
}

// Log writes an event (in-memory only, no deduplication)
func (m *MockLoadingEventRepository) Log(ctx context.Context, sessionID, vehicle, message, level string, metadata map[string]interface{}) error {
	if m.LogErr != nil {
		return m.LogErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := persistence.LoadingEventEntry{
		ID:        len(m.Events[sessionID]) + 1,
		SessionID: sessionID,
		Vehicle:   vehicle,
		Message:   message,
		Level:     level,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	m.Events[sessionID] = append(m.Events[sessionID], entry)
	return nil
}

// GetEvents retrieves events for a session in insertion order with optional filtering
func (m *MockLoadingEventRepository) GetEvents(ctx context.Context, sessionID string, limit int, level *string, since *time.Time) ([]persistence.LoadingEventEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]persistence.LoadingEventEntry, 0)
	for _, event := range m.Events[sessionID] {
		if level != nil && event.Level != *level {
			continue
		}
		if since != nil && !event.Timestamp.After(*since) {
			continue
		}
		filtered = append(filtered, event)
	}

	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}

	return filtered, nil
}

// Messages returns every message logged under any session
func (m *MockLoadingEventRepository) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var messages []string
	for _, events := range m.Events {
		for _, e := range events {
			messages = append(messages, e.Message)
		}
	}
	return messages
}
