package loading

import (
	"context"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/adapters/metrics"
	"github.com/andrescamacho/supplyload-go/internal/application/logging"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// sessionEnder retires sessions: registry removal, metrics and the persisted outcome
type sessionEnder struct {
	registry *Registry
	sessions SessionRepository
	clock    shared.Clock
}

func newSessionEnder(registry *Registry, sessions SessionRepository, clock shared.Clock) sessionEnder {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return sessionEnder{registry: registry, sessions: sessions, clock: clock}
}

func (e sessionEnder) end(ctx context.Context, session *Session, outcome Outcome) error {
	e.registry.removeSession(session)

	controller := session.Controller
	metrics.RecordSessionEnd(session.Vehicle, string(outcome), controller.IsHoldFull())

	logging.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("[Loading] Session %s ended: %s", session.ID, outcome), map[string]interface{}{
		"vehicle":        session.Vehicle,
		"session_id":     session.ID,
		"outcome":        string(outcome),
		"retry_attempts": controller.RetryAttempts(),
		"loaded_kg":      session.LoadedKg(),
		"ticks":          session.Ticks(),
	})

	if e.sessions == nil {
		return nil
	}

	record := &SessionRecord{
		ID:            session.ID,
		Vehicle:       session.Vehicle,
		Outcome:       outcome,
		RetryAttempts: controller.RetryAttempts(),
		HoldFull:      controller.IsHoldFull(),
		Ticks:         session.Ticks(),
		LoadedKg:      session.LoadedKg(),
		StartedAt:     session.StartedAt,
		EndedAt:       e.clock.Now(),
	}
	if err := e.sessions.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save outcome of session %s: %w", session.ID, err)
	}
	return nil
}
