package loading

import (
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/application/common"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// Dependencies wires the loading handlers. Only Registry is required.
type Dependencies struct {
	Registry      *Registry
	Sessions      SessionRepository
	Clock         shared.Clock
	Options       loadingDomain.Options
	LoggerFactory EventLoggerFactory
}

// RegisterHandlers registers every loading command and query with the mediator
func RegisterHandlers(m common.Mediator, deps Dependencies) error {
	if deps.Registry == nil {
		return fmt.Errorf("loading registry cannot be nil")
	}

	registrations := []func() error{
		func() error {
			return common.RegisterHandler[*SetLoadingCommand](m,
				NewSetLoadingHandler(deps.Registry, deps.Sessions, deps.Clock, deps.Options, deps.LoggerFactory))
		},
		func() error {
			return common.RegisterHandler[*LoadTickCommand](m, NewLoadTickHandler(deps.Registry, deps.Sessions, deps.Clock))
		},
		func() error {
			return common.RegisterHandler[*BackgroundLoadCommand](m, NewBackgroundLoadHandler(deps.Registry, deps.Sessions, deps.Clock))
		},
		func() error {
			return common.RegisterHandler[*GetLoadingQuery](m, NewGetLoadingHandler(deps.Registry))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register loading handlers: %w", err)
		}
	}
	return nil
}
