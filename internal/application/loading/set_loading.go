package loading

import (
	"context"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/application/common"
	"github.com/andrescamacho/supplyload-go/internal/application/logging"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
	"github.com/andrescamacho/supplyload-go/pkg/utils"
)

// SetLoadingCommand starts or cancels loading of a vehicle.
// A non-nil Manifest begins a session, replacing any active one; a nil
// Manifest cancels the active session without undoing transfers.
type SetLoadingCommand struct {
	Vehicle  string
	Manifest *loadingDomain.Manifest
	Source   loadingDomain.ResourceSource
	Hold     loadingDomain.CargoHold
}

// SetLoadingResponse - Response from set loading command
type SetLoadingResponse struct {
	SessionID string
	Completed bool

	// CancelledSessionID is set when an active session was discarded
	CancelledSessionID string
}

// EventLoggerFactory builds a per-session logger, e.g. one persisting to the event log
type EventLoggerFactory func(sessionID, vehicle string) logging.EventLogger

// SetLoadingHandler - Handles set loading commands
type SetLoadingHandler struct {
	registry      *Registry
	ender         sessionEnder
	clock         shared.Clock
	options       loadingDomain.Options
	loggerFactory EventLoggerFactory
}

// NewSetLoadingHandler creates a new set loading handler.
// sessions, clock and loggerFactory may be nil.
func NewSetLoadingHandler(
	registry *Registry,
	sessions SessionRepository,
	clock shared.Clock,
	options loadingDomain.Options,
	loggerFactory EventLoggerFactory,
) *SetLoadingHandler {
	ender := newSessionEnder(registry, sessions, clock)
	return &SetLoadingHandler{
		registry:      registry,
		ender:         ender,
		clock:         ender.clock,
		options:       options,
		loggerFactory: loggerFactory,
	}
}

// Handle executes the set loading command
func (h *SetLoadingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SetLoadingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	vehicle := cmd.Vehicle
	if vehicle == "" && cmd.Hold != nil {
		vehicle = cmd.Hold.Name()
	}
	if vehicle == "" {
		return nil, shared.NewValidationError("vehicle", "required")
	}

	// 1. Cancellation
	if cmd.Manifest == nil {
		response := &SetLoadingResponse{}
		if session := h.registry.Remove(vehicle); session != nil {
			response.CancelledSessionID = session.ID
			if err := h.ender.end(ctx, session, OutcomeCancelled); err != nil {
				return response, err
			}
		}
		return response, nil
	}

	if cmd.Source == nil || cmd.Hold == nil {
		return nil, fmt.Errorf("vehicle %s: %w", vehicle, loadingDomain.ErrNilCollaborator)
	}

	// 2. Build the session logger before Begin so clamp warnings are captured
	sessionID := utils.GenerateSessionID(vehicle)
	opts := h.options
	opts.Logger = h.sessionLogger(ctx, sessionID, vehicle)

	controller, err := loadingDomain.Begin(cmd.Manifest, cmd.Source, cmd.Hold, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin loading %s: %w", vehicle, err)
	}

	session := &Session{
		ID:         sessionID,
		Vehicle:    vehicle,
		Controller: controller,
		StartedAt:  h.clock.Now(),
	}

	// 3. Replace any active session
	response := &SetLoadingResponse{SessionID: session.ID, Completed: controller.IsCompleted()}
	if previous := h.registry.Put(session); previous != nil {
		response.CancelledSessionID = previous.ID
		if err := h.ender.end(ctx, previous, OutcomeCancelled); err != nil {
			return response, err
		}
	}

	opts.Logger.Log("INFO", fmt.Sprintf("[Loading] Session %s started for %s", session.ID, vehicle), map[string]interface{}{
		"vehicle":    vehicle,
		"session_id": session.ID,
	})
	return response, nil
}

func (h *SetLoadingHandler) sessionLogger(ctx context.Context, sessionID, vehicle string) logging.EventLogger {
	ctxLogger := logging.LoggerFromContext(ctx)
	if h.loggerFactory == nil {
		return ctxLogger
	}
	return logging.MultiLogger{ctxLogger, h.loggerFactory(sessionID, vehicle)}
}
