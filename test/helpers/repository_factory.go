package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// TestRepositories holds all real repository instances for integration tests
type TestRepositories struct {
	DB          *gorm.DB
	EventRepo   *persistence.GormLoadingEventRepository
	SessionRepo *persistence.GormSessionRepository
}

// NewTestRepositories creates all real repository instances using the shared test DB.
// clock drives event timestamps and deduplication (usually a MockClock in tests).
func NewTestRepositories(clock shared.Clock) *TestRepositories {
	db := SharedTestDB

	return &TestRepositories{
		DB:          db,
		EventRepo:   persistence.NewGormLoadingEventRepository(db, clock),
		SessionRepo: persistence.NewGormSessionRepository(db),
	}
}
