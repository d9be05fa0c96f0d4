package loading

import (
	"context"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/adapters/metrics"
	"github.com/andrescamacho/supplyload-go/internal/application/common"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// LoadTickCommand spends one worker's time on a vehicle's active session
type LoadTickCommand struct {
	Vehicle string
	Worker  loadingDomain.Worker
	Time    float64
}

// LoadTickResponse - Response from load tick command
type LoadTickResponse struct {
	SessionID     string
	Remaining     float64
	Finished      bool
	Completed     bool
	Failed        bool
	HoldFull      bool
	Loaded        float64
	RetryAttempts int

	// Outcome is set when this tick ended the session
	Outcome Outcome
}

// LoadTickHandler - Handles load tick commands
type LoadTickHandler struct {
	registry *Registry
	ender    sessionEnder
}

// NewLoadTickHandler creates a new load tick handler
func NewLoadTickHandler(registry *Registry, sessions SessionRepository, clock shared.Clock) *LoadTickHandler {
	return &LoadTickHandler{
		registry: registry,
		ender:    newSessionEnder(registry, sessions, clock),
	}
}

// Handle executes the load tick command
func (h *LoadTickHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*LoadTickCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	session, ok := h.registry.Get(cmd.Vehicle)
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", cmd.Vehicle, loadingDomain.ErrNoActiveSession)
	}

	result, err := session.Controller.Load(cmd.Worker, cmd.Time)
	if err != nil {
		return nil, fmt.Errorf("load tick for %s: %w", cmd.Vehicle, err)
	}

	loaded := result.TotalLoaded()
	session.recordTick(loaded)
	metrics.RecordLoadTick(cmd.Vehicle, result.Stats)

	response := &LoadTickResponse{
		SessionID:     session.ID,
		Remaining:     result.Remaining,
		Finished:      result.Finished,
		Completed:     result.Completed,
		Failed:        result.Failed,
		HoldFull:      result.HoldFull,
		Loaded:        loaded,
		RetryAttempts: session.Controller.RetryAttempts(),
	}

	switch {
	case result.Completed:
		response.Outcome = OutcomeCompleted
	case result.Failed:
		response.Outcome = OutcomeFailed
	default:
		return response, nil
	}

	if err := h.ender.end(ctx, session, response.Outcome); err != nil {
		return response, err
	}
	return response, nil
}
