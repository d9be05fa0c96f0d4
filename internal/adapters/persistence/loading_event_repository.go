package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
	"gorm.io/gorm"
)

// LoadingEventRepository manages loading event persistence
type LoadingEventRepository interface {
	// Log writes an event to the database with deduplication
	Log(ctx context.Context, sessionID, vehicle, message, level string, metadata map[string]interface{}) error

	// GetEvents retrieves events for a session, newest first, with optional filtering
	GetEvents(ctx context.Context, sessionID string, limit int, level *string, since *time.Time) ([]LoadingEventEntry, error)
}

// LoadingEventEntry represents a persisted loading event
type LoadingEventEntry struct {
	ID        int
	SessionID string
	Vehicle   string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormLoadingEventRepository is a GORM-based implementation
type GormLoadingEventRepository struct {
	db    *gorm.DB
	clock shared.Clock

	// key: sessionID|message, value: last logged time
	dedupCache   map[string]time.Time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormLoadingEventRepository creates a new loading event repository.
// If clock is nil, uses RealClock.
func NewGormLoadingEventRepository(db *gorm.DB, clock shared.Clock) *GormLoadingEventRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormLoadingEventRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes an event with time-windowed deduplication.
// A message repeated within the window for the same session is dropped.
func (r *GormLoadingEventRepository) Log(ctx context.Context, sessionID, vehicle, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := sessionID + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists {
		if now.Sub(lastLogged) < r.dedupWindow {
			r.dedupMu.Unlock()
			return nil
		}
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	// Metadata is optional; an unmarshalable map is stored empty
	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	event := &LoadingEventModel{
		SessionID: sessionID,
		Vehicle:   vehicle,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to persist loading event: %w", err)
	}
	return nil
}

// cleanupDedupCache removes entries older than the deduplication window.
// Must be called while holding dedupMu.
func (r *GormLoadingEventRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetEvents retrieves events for a session with optional filtering
func (r *GormLoadingEventRepository) GetEvents(ctx context.Context, sessionID string, limit int, level *string, since *time.Time) ([]LoadingEventEntry, error) {
	var models []LoadingEventModel

	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	query = query.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get loading events: %w", err)
	}

	entries := make([]LoadingEventEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = LoadingEventEntry{
			ID:        model.ID,
			SessionID: model.SessionID,
			Vehicle:   model.Vehicle,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
