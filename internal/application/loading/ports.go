package loading

import (
	"context"
	"time"
)

// Outcome is how a loading session ended
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// SessionRecord is the persisted summary of an ended session
type SessionRecord struct {
	ID            string
	Vehicle       string
	Outcome       Outcome
	RetryAttempts int
	HoldFull      bool
	Ticks         int
	LoadedKg      float64
	StartedAt     time.Time
	EndedAt       time.Time
}

// SessionRepository persists session outcomes
type SessionRepository interface {
	Save(ctx context.Context, record *SessionRecord) error
	FindByID(ctx context.Context, id string) (*SessionRecord, error)
	FindByVehicle(ctx context.Context, vehicle string) ([]*SessionRecord, error)
}
