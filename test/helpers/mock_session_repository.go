package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/supplyload-go/internal/application/loading"
)

// MockSessionRepository is an in-memory implementation of SessionRepository for testing
type MockSessionRepository struct {
	mu      sync.Mutex
	Records []*loading.SessionRecord
	SaveErr error
}

// NewMockSessionRepository creates a new mock session repository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Save appends the record
func (m *MockSessionRepository) Save(ctx context.Context, record *loading.SessionRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.Records = append(m.Records, &copied)
	return nil
}

// FindByID returns the last record saved with the id
func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*loading.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].ID == id {
			return m.Records[i], nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

// FindByVehicle returns the vehicle's records in save order
func (m *MockSessionRepository) FindByVehicle(ctx context.Context, vehicle string) ([]*loading.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []*loading.SessionRecord
	for _, r := range m.Records {
		if r.Vehicle == vehicle {
			records = append(records, r)
		}
	}
	return records, nil
}
