package persistence

import (
	"time"
)

// LoadingEventModel represents the loading_events table
type LoadingEventModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id;not null;index"`
	Vehicle   string    `gorm:"column:vehicle;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON stored as string
}

func (LoadingEventModel) TableName() string {
	return "loading_events"
}

// LoadingSessionModel represents the loading_sessions table
type LoadingSessionModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Vehicle       string    `gorm:"column:vehicle;not null;index"`
	Outcome       string    `gorm:"column:outcome;not null"`
	RetryAttempts int       `gorm:"column:retry_attempts;not null;default:0"`
	HoldFull      bool      `gorm:"column:hold_full;not null;default:false"`
	Ticks         int       `gorm:"column:ticks;not null;default:0"`
	LoadedKg      float64   `gorm:"column:loaded_kg;not null;default:0"`
	StartedAt     time.Time `gorm:"column:started_at;not null"`
	EndedAt       time.Time `gorm:"column:ended_at;not null"`
}

func (LoadingSessionModel) TableName() string {
	return "loading_sessions"
}
