package loading

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/supplyload-go/internal/application/common"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// GetLoadingQuery - Query for a vehicle's active loading session
type GetLoadingQuery struct {
	Vehicle string
}

// LoadingSnapshot is a read-only copy of a session's outstanding requirements
type LoadingSnapshot struct {
	SessionID          string
	Vehicle            string
	MandatoryResources map[resource.ResourceID]float64
	OptionalResources  map[resource.ResourceID]float64
	MandatoryEquipment map[resource.EquipmentKind]int
	OptionalEquipment  map[resource.EquipmentKind]int
	RetryAttempts      int
	HoldFull           bool
	Completed          bool
	Failed             bool
	Ticks              int
	LoadedKg           float64
	StartedAt          time.Time
	Dump               string
}

// GetLoadingHandler - Handles get loading queries
type GetLoadingHandler struct {
	registry *Registry
}

// NewGetLoadingHandler creates a new get loading handler
func NewGetLoadingHandler(registry *Registry) *GetLoadingHandler {
	return &GetLoadingHandler{registry: registry}
}

// Handle executes the get loading query
func (h *GetLoadingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetLoadingQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	session, ok := h.registry.Get(query.Vehicle)
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", query.Vehicle, loadingDomain.ErrNoActiveSession)
	}

	c := session.Controller
	return &LoadingSnapshot{
		SessionID:          session.ID,
		Vehicle:            session.Vehicle,
		MandatoryResources: c.MandatoryResources(),
		OptionalResources:  c.OptionalResources(),
		MandatoryEquipment: c.MandatoryEquipment(),
		OptionalEquipment:  c.OptionalEquipment(),
		RetryAttempts:      c.RetryAttempts(),
		HoldFull:           c.IsHoldFull(),
		Completed:          c.IsCompleted(),
		Failed:             c.IsFailure(),
		Ticks:              session.Ticks(),
		LoadedKg:           session.LoadedKg(),
		StartedAt:          session.StartedAt,
		Dump:               c.DumpContents(),
	}, nil
}
