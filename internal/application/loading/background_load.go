package loading

import (
	"context"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/adapters/metrics"
	"github.com/andrescamacho/supplyload-go/internal/application/common"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// BackgroundLoadCommand tops up life support on a vehicle's active session
type BackgroundLoadCommand struct {
	Vehicle string
	Time    float64
}

// BackgroundLoadResponse - Response from background load command
type BackgroundLoadResponse struct {
	SessionID string
	Budget    float64
	Loaded    float64
	Remaining float64
	Completed bool

	// Outcome is set when background loading drained the manifest
	Outcome Outcome
}

// BackgroundLoadHandler - Handles background load commands
type BackgroundLoadHandler struct {
	registry *Registry
	ender    sessionEnder
}

// NewBackgroundLoadHandler creates a new background load handler
func NewBackgroundLoadHandler(registry *Registry, sessions SessionRepository, clock shared.Clock) *BackgroundLoadHandler {
	return &BackgroundLoadHandler{
		registry: registry,
		ender:    newSessionEnder(registry, sessions, clock),
	}
}

// Handle executes the background load command
func (h *BackgroundLoadHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*BackgroundLoadCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	session, ok := h.registry.Get(cmd.Vehicle)
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", cmd.Vehicle, loadingDomain.ErrNoActiveSession)
	}

	stats, err := session.Controller.BackgroundLoad(cmd.Time)
	if err != nil {
		return nil, fmt.Errorf("background load for %s: %w", cmd.Vehicle, err)
	}

	loaded := stats.TotalLoaded()
	session.recordBackground(loaded)
	metrics.RecordLoadTick(cmd.Vehicle, stats)

	response := &BackgroundLoadResponse{
		SessionID: session.ID,
		Budget:    stats.Budget,
		Loaded:    loaded,
		Remaining: stats.Remaining,
		Completed: session.Controller.IsCompleted(),
	}
	if !response.Completed {
		return response, nil
	}

	response.Outcome = OutcomeCompleted
	if err := h.ender.end(ctx, session, response.Outcome); err != nil {
		return response, err
	}
	return response, nil
}
