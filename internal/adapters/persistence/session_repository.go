package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/application/loading"
	"gorm.io/gorm"
)

// GormSessionRepository implements loading.SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM session repository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Save persists a session outcome, overwriting an earlier row with the same id
func (r *GormSessionRepository) Save(ctx context.Context, record *loading.SessionRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("session record requires an id")
	}

	result := r.db.WithContext(ctx).Save(recordToModel(record))
	if result.Error != nil {
		return fmt.Errorf("failed to save session: %w", result.Error)
	}
	return nil
}

// FindByID retrieves a session outcome by id
func (r *GormSessionRepository) FindByID(ctx context.Context, id string) (*loading.SessionRecord, error) {
	var model LoadingSessionModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to find session: %w", result.Error)
	}
	return modelToRecord(&model), nil
}

// FindByVehicle retrieves all session outcomes of a vehicle, oldest first
func (r *GormSessionRepository) FindByVehicle(ctx context.Context, vehicle string) ([]*loading.SessionRecord, error) {
	var models []LoadingSessionModel
	result := r.db.WithContext(ctx).
		Where("vehicle = ?", vehicle).
		Order("started_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", result.Error)
	}

	records := make([]*loading.SessionRecord, 0, len(models))
	for i := range models {
		records = append(records, modelToRecord(&models[i]))
	}
	return records, nil
}

func recordToModel(record *loading.SessionRecord) *LoadingSessionModel {
	return &LoadingSessionModel{
		ID:            record.ID,
		Vehicle:       record.Vehicle,
		Outcome:       string(record.Outcome),
		RetryAttempts: record.RetryAttempts,
		HoldFull:      record.HoldFull,
		Ticks:         record.Ticks,
		LoadedKg:      record.LoadedKg,
		StartedAt:     record.StartedAt,
		EndedAt:       record.EndedAt,
	}
}

func modelToRecord(model *LoadingSessionModel) *loading.SessionRecord {
	return &loading.SessionRecord{
		ID:            model.ID,
		Vehicle:       model.Vehicle,
		Outcome:       loading.Outcome(model.Outcome),
		RetryAttempts: model.RetryAttempts,
		HoldFull:      model.HoldFull,
		Ticks:         model.Ticks,
		LoadedKg:      model.LoadedKg,
		StartedAt:     model.StartedAt,
		EndedAt:       model.EndedAt,
	}
}
