package steps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/application/common"
	"github.com/andrescamacho/supplyload-go/internal/application/loading"
	"github.com/andrescamacho/supplyload-go/internal/application/logging"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/settlement"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
	"github.com/andrescamacho/supplyload-go/internal/domain/vehicle"
	"github.com/andrescamacho/supplyload-go/test/helpers"
)

const massTolerance = 1e-6

// loadingContext holds state for loading session scenarios
type loadingContext struct {
	repos    *helpers.TestRepositories
	clock    *shared.MockClock
	catalog  *resource.Catalog
	mediator common.Mediator
	console  *helpers.RecordingLogger

	settlement *settlement.Settlement
	vehicle    *vehicle.Vehicle

	sessionID string
	started   *loading.SetLoadingResponse
	lastTick  *loading.LoadTickResponse
	lastErr   error
}

func (lc *loadingContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	lc.clock = shared.NewMockClock(time.Date(2040, time.March, 1, 8, 0, 0, 0, time.UTC))
	lc.repos = helpers.NewTestRepositories(lc.clock)
	lc.catalog = resource.DefaultCatalog()
	lc.console = &helpers.RecordingLogger{}
	lc.settlement = nil
	lc.vehicle = nil
	lc.sessionID = ""
	lc.started = nil
	lc.lastTick = nil
	lc.lastErr = nil

	lc.mediator = common.NewMediator()
	return loading.RegisterHandlers(lc.mediator, loading.Dependencies{
		Registry: loading.NewRegistry(),
		Sessions: lc.repos.SessionRepo,
		Clock:    lc.clock,
		Options:  loadingDomain.Options{Catalog: lc.catalog},
		LoggerFactory: func(sessionID, vehicle string) logging.EventLogger {
			return persistence.NewEventLogger(lc.repos.EventRepo, sessionID, vehicle)
		},
	})
}

func (lc *loadingContext) ctx() context.Context {
	return logging.WithLogger(context.Background(), lc.console)
}

// ============================================================================
// Setup Steps
// ============================================================================

func (lc *loadingContext) aSettlementNamed(name string) error {
	s, err := settlement.New(name, lc.catalog)
	if err != nil {
		return err
	}
	lc.settlement = s
	return nil
}

func (lc *loadingContext) theSettlementStoresKgOf(quantity float64, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	if id.IsItem() {
		return fmt.Errorf("%s is counted in units, not kg", name)
	}
	return lc.settlement.StoreAmount(id, quantity)
}

func (lc *loadingContext) theSettlementStoresUnitsOf(count int, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	return lc.settlement.StoreItems(id, count)
}

func (lc *loadingContext) theSettlementHasEmptyEquipment(count int, kind string, mass float64) error {
	for i := 0; i < count; i++ {
		unit, err := resource.NewEquipment(resource.EquipmentKind(kind), mass)
		if err != nil {
			return err
		}
		lc.settlement.AddEquipment(unit)
	}
	return nil
}

func (lc *loadingContext) aVehicleParkedWithCapacity(name string, capacity float64) error {
	if lc.settlement == nil {
		return fmt.Errorf("no settlement to park %s at", name)
	}

	v, err := vehicle.New(name, capacity, lc.catalog)
	if err != nil {
		return err
	}
	v.SetLoading(true)
	v.SetAwaitingFuel(true)
	lc.settlement.Park(v)
	lc.vehicle = v
	return nil
}

func (lc *loadingContext) theVehicleAlreadyCarriesKgOf(quantity float64, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	return lc.vehicle.DepositAmount(id, quantity)
}

// ============================================================================
// Action Steps
// ============================================================================

func (lc *loadingContext) loadingStartsWithManifest(table *messages.PickleTable) error {
	spec := loadingDomain.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{},
		OptionalResources:  map[resource.ResourceID]float64{},
		MandatoryEquipment: map[resource.EquipmentKind]int{},
		OptionalEquipment:  map[resource.EquipmentKind]int{},
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		if len(row.Cells) != 3 {
			return fmt.Errorf("manifest row %d: want requirement, name and quantity", i)
		}
		requirement := row.Cells[0].Value
		name := row.Cells[1].Value
		quantity, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return fmt.Errorf("manifest row %d: %w", i, err)
		}

		switch requirement {
		case "mandatory resource", "optional resource":
			id, err := lc.catalog.Resolve(name)
			if err != nil {
				return err
			}
			if strings.HasPrefix(requirement, "mandatory") {
				spec.MandatoryResources[id] = quantity
			} else {
				spec.OptionalResources[id] = quantity
			}
		case "mandatory equipment":
			spec.MandatoryEquipment[resource.EquipmentKind(name)] = int(quantity)
		case "optional equipment":
			spec.OptionalEquipment[resource.EquipmentKind(name)] = int(quantity)
		default:
			return fmt.Errorf("manifest row %d: unknown requirement %q", i, requirement)
		}
	}

	manifest, err := loadingDomain.NewManifest(spec)
	if err != nil {
		return err
	}

	resp, err := lc.mediator.Send(lc.ctx(), &loading.SetLoadingCommand{
		Manifest: manifest,
		Source:   lc.settlement,
		Hold:     lc.vehicle,
	})
	if err != nil {
		return err
	}
	lc.started = resp.(*loading.SetLoadingResponse)
	lc.sessionID = lc.started.SessionID
	return nil
}

func (lc *loadingContext) anAverageWorkerLoadsABudgetOfKg(kg float64) error {
	return lc.workerLoads(helpers.AverageWorker, helpers.TimeToLoad(kg))
}

func (lc *loadingContext) aWorkerOfStrengthLoadsForTimeUnits(strength, duration float64) error {
	return lc.workerLoads(helpers.FakeWorker{Strength: strength}, duration)
}

func (lc *loadingContext) anAverageWorkerLoadsABudgetOfKgTimes(kg float64, times int) error {
	for i := 0; i < times; i++ {
		if err := lc.anAverageWorkerLoadsABudgetOfKg(kg); err != nil {
			return err
		}
	}
	return nil
}

func (lc *loadingContext) workerLoads(worker loadingDomain.Worker, duration float64) error {
	lc.clock.Advance(time.Minute)

	resp, err := lc.mediator.Send(lc.ctx(), &loading.LoadTickCommand{
		Vehicle: lc.vehicle.Name(),
		Worker:  worker,
		Time:    duration,
	})
	lc.lastErr = err
	if err != nil {
		lc.lastTick = nil
		return nil
	}
	lc.lastTick = resp.(*loading.LoadTickResponse)
	return nil
}

func (lc *loadingContext) backgroundLoadingRunsForTimeUnits(duration float64) error {
	_, err := lc.mediator.Send(lc.ctx(), &loading.BackgroundLoadCommand{
		Vehicle: lc.vehicle.Name(),
		Time:    duration,
	})
	return err
}

func (lc *loadingContext) loadingIsCancelled() error {
	_, err := lc.mediator.Send(lc.ctx(), &loading.SetLoadingCommand{Vehicle: lc.vehicle.Name()})
	return err
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (lc *loadingContext) snapshot() (*loading.LoadingSnapshot, error) {
	resp, err := lc.mediator.Send(lc.ctx(), &loading.GetLoadingQuery{Vehicle: lc.vehicle.Name()})
	if err != nil {
		return nil, err
	}
	return resp.(*loading.LoadingSnapshot), nil
}

func (lc *loadingContext) theVehicleHoldsKgOf(expected float64, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	if actual := lc.vehicle.StoredAmount(id); math.Abs(actual-expected) > massTolerance {
		return fmt.Errorf("expected vehicle to hold %.3f kg of %s, got %.3f", expected, name, actual)
	}
	return nil
}

func (lc *loadingContext) theVehicleHoldsUnitsOf(expected int, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	if actual := lc.vehicle.StoredItemCount(id); actual != expected {
		return fmt.Errorf("expected vehicle to hold %d units of %s, got %d", expected, name, actual)
	}
	return nil
}

func (lc *loadingContext) theVehicleCarriesEmpty(expected int, kind string) error {
	if actual := lc.vehicle.EmptyContainerCount(resource.EquipmentKind(kind)); actual != expected {
		return fmt.Errorf("expected vehicle to carry %d empty %s, got %d", expected, kind, actual)
	}
	return nil
}

func (lc *loadingContext) theSettlementOwnsKgOf(expected float64, name string) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	if actual := lc.settlement.OwnedAmount(id); math.Abs(actual-expected) > massTolerance {
		return fmt.Errorf("expected settlement to own %.3f kg of %s, got %.3f", expected, name, actual)
	}
	return nil
}

func (lc *loadingContext) theOutstandingMandatoryIsKg(name string, expected float64) error {
	id, err := lc.catalog.Resolve(name)
	if err != nil {
		return err
	}
	snap, err := lc.snapshot()
	if err != nil {
		return err
	}
	actual, ok := snap.MandatoryResources[id]
	if !ok {
		return fmt.Errorf("expected mandatory %s to be outstanding", name)
	}
	if math.Abs(actual-expected) > massTolerance {
		return fmt.Errorf("expected %.3f kg of mandatory %s outstanding, got %.3f", expected, name, actual)
	}
	return nil
}

func (lc *loadingContext) isNoLongerOutstanding(name string) error {
	snap, err := lc.snapshot()
	if errors.Is(err, loadingDomain.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if id, err := lc.catalog.Resolve(name); err == nil {
		if _, ok := snap.MandatoryResources[id]; ok {
			return fmt.Errorf("mandatory %s is still outstanding", name)
		}
		if _, ok := snap.OptionalResources[id]; ok {
			return fmt.Errorf("optional %s is still outstanding", name)
		}
		return nil
	}

	kind := resource.EquipmentKind(name)
	if _, ok := snap.MandatoryEquipment[kind]; ok {
		return fmt.Errorf("mandatory %s is still outstanding", name)
	}
	if _, ok := snap.OptionalEquipment[kind]; ok {
		return fmt.Errorf("optional %s is still outstanding", name)
	}
	return nil
}

func (lc *loadingContext) theRetryAttemptsLeftAre(expected int) error {
	actual := -1
	if snap, err := lc.snapshot(); err == nil {
		actual = snap.RetryAttempts
	} else if lc.lastTick != nil {
		actual = lc.lastTick.RetryAttempts
	}
	if actual != expected {
		return fmt.Errorf("expected %d retry attempts left, got %d", expected, actual)
	}
	return nil
}

func (lc *loadingContext) theLastTickReportedShortageCount(expected int) error {
	if lc.lastTick == nil {
		return fmt.Errorf("no load tick recorded (last error: %v)", lc.lastErr)
	}
	// Each shortage costs exactly one retry attempt
	if actual := loadingDomain.DefaultMaxRetryAttempts - lc.lastTick.RetryAttempts; actual != expected {
		return fmt.Errorf("expected %d shortages, got %d", expected, actual)
	}
	return nil
}

func (lc *loadingContext) theSessionShouldBeCompleted() error {
	if lc.lastTick == nil {
		if lc.started != nil && lc.started.Completed {
			return nil
		}
		return fmt.Errorf("session has not completed")
	}
	if !lc.lastTick.Completed {
		return fmt.Errorf("expected session to be completed")
	}
	return nil
}

func (lc *loadingContext) theSessionShouldNotBeCompleted() error {
	if lc.lastTick != nil && lc.lastTick.Completed {
		return fmt.Errorf("expected session not to be completed")
	}
	return nil
}

func (lc *loadingContext) theSessionShouldHaveFailed() error {
	if lc.lastTick == nil || !lc.lastTick.Failed {
		return fmt.Errorf("expected session to have failed")
	}
	return nil
}

func (lc *loadingContext) theSessionShouldNotHaveFailed() error {
	if lc.lastTick != nil && lc.lastTick.Failed {
		return fmt.Errorf("expected session not to have failed")
	}
	return nil
}

func (lc *loadingContext) theCargoHoldShouldBeReportedFull() error {
	if lc.lastTick == nil || !lc.lastTick.HoldFull {
		return fmt.Errorf("expected cargo hold to be full")
	}
	return nil
}

func (lc *loadingContext) theVehicleShouldNoLongerBeLoading() error {
	if lc.vehicle.IsLoading() {
		return fmt.Errorf("expected %s to have cleared its loading status", lc.vehicle.Name())
	}
	if lc.vehicle.IsAwaitingFuel() {
		return fmt.Errorf("expected %s to have cleared its awaiting fuel flag", lc.vehicle.Name())
	}
	return nil
}

func (lc *loadingContext) theVehicleShouldBeAttached() error {
	if lc.settlement.IsDetached(lc.vehicle) {
		return fmt.Errorf("expected %s to be attached to %s", lc.vehicle.Name(), lc.settlement.Name())
	}
	return nil
}

func (lc *loadingContext) noLoadingSessionShouldBeActive() error {
	_, err := lc.snapshot()
	if errors.Is(err, loadingDomain.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("expected no active session for %s", lc.vehicle.Name())
}

func (lc *loadingContext) theRecordedOutcomeShouldBe(expected string) error {
	record, err := lc.repos.SessionRepo.FindByID(context.Background(), lc.sessionID)
	if err != nil {
		return err
	}
	if string(record.Outcome) != expected {
		return fmt.Errorf("expected recorded outcome %q, got %q", expected, record.Outcome)
	}
	return nil
}

func (lc *loadingContext) theRecordedSessionLoaded(expected float64) error {
	record, err := lc.repos.SessionRepo.FindByID(context.Background(), lc.sessionID)
	if err != nil {
		return err
	}
	if math.Abs(record.LoadedKg-expected) > massTolerance {
		return fmt.Errorf("expected recorded session to have loaded %.3f kg, got %.3f", expected, record.LoadedKg)
	}
	return nil
}

func (lc *loadingContext) theEventLogShouldContain(level, fragment string) error {
	events, err := lc.repos.EventRepo.GetEvents(context.Background(), lc.sessionID, 0, &level, nil)
	if err != nil {
		return err
	}
	for _, e := range events {
		if strings.Contains(e.Message, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no %s event containing %q among %d events", level, fragment, len(events))
}

func (lc *loadingContext) theSessionEventLogShouldHaveEntries(expected int) error {
	events, err := lc.repos.EventRepo.GetEvents(context.Background(), lc.sessionID, 0, nil, nil)
	if err != nil {
		return err
	}
	if len(events) != expected {
		return fmt.Errorf("expected %d events, got %d", expected, len(events))
	}
	return nil
}

func (lc *loadingContext) theLoadShouldBeRejected() error {
	if lc.lastErr == nil {
		return fmt.Errorf("expected the load tick to be rejected")
	}
	return nil
}

// InitializeLoadingScenario registers the loading session steps
func InitializeLoadingScenario(sc *godog.ScenarioContext) {
	lc := &loadingContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, lc.reset()
	})

	// Setup steps
	sc.Step(`^a settlement "([^"]*)"$`, lc.aSettlementNamed)
	sc.Step(`^the settlement stores (\d+(?:\.\d+)?) kg of "([^"]*)"$`, lc.theSettlementStoresKgOf)
	sc.Step(`^the settlement stores (\d+) units of "([^"]*)"$`, lc.theSettlementStoresUnitsOf)
	sc.Step(`^the settlement has (\d+) empty "([^"]*)" weighing (\d+(?:\.\d+)?) kg$`, lc.theSettlementHasEmptyEquipment)
	sc.Step(`^a vehicle "([^"]*)" parked there with (\d+(?:\.\d+)?) kg of cargo capacity$`, lc.aVehicleParkedWithCapacity)
	sc.Step(`^the vehicle already carries (\d+(?:\.\d+)?) kg of "([^"]*)"$`, lc.theVehicleAlreadyCarriesKgOf)

	// Action steps
	sc.Step(`^loading starts with the manifest:$`, lc.loadingStartsWithManifest)
	sc.Step(`^an average worker loads a budget of (\d+(?:\.\d+)?) kg$`, lc.anAverageWorkerLoadsABudgetOfKg)
	sc.Step(`^an average worker loads a budget of (\d+(?:\.\d+)?) kg (\d+) times$`, lc.anAverageWorkerLoadsABudgetOfKgTimes)
	sc.Step(`^a worker of strength (\d+(?:\.\d+)?) loads for (-?\d+(?:\.\d+)?) time units$`, lc.aWorkerOfStrengthLoadsForTimeUnits)
	sc.Step(`^background loading runs for (\d+(?:\.\d+)?) time units$`, lc.backgroundLoadingRunsForTimeUnits)
	sc.Step(`^loading is cancelled$`, lc.loadingIsCancelled)

	// Assertion steps
	sc.Step(`^the vehicle holds (\d+(?:\.\d+)?) kg of "([^"]*)"$`, lc.theVehicleHoldsKgOf)
	sc.Step(`^the vehicle holds (\d+) units of "([^"]*)"$`, lc.theVehicleHoldsUnitsOf)
	sc.Step(`^the vehicle carries (\d+) empty "([^"]*)"$`, lc.theVehicleCarriesEmpty)
	sc.Step(`^the settlement owns (\d+(?:\.\d+)?) kg of "([^"]*)"$`, lc.theSettlementOwnsKgOf)
	sc.Step(`^the outstanding mandatory "([^"]*)" is (\d+(?:\.\d+)?) (?:kg|units)$`, lc.theOutstandingMandatoryIsKg)
	sc.Step(`^"([^"]*)" is no longer outstanding$`, lc.isNoLongerOutstanding)
	sc.Step(`^(\d+) retry attempts? (?:are|is) left$`, lc.theRetryAttemptsLeftAre)
	sc.Step(`^the session ran into (\d+) shortages? so far$`, lc.theLastTickReportedShortageCount)
	sc.Step(`^the session should be completed$`, lc.theSessionShouldBeCompleted)
	sc.Step(`^the session should not be completed$`, lc.theSessionShouldNotBeCompleted)
	sc.Step(`^the session should have failed$`, lc.theSessionShouldHaveFailed)
	sc.Step(`^the session should not have failed$`, lc.theSessionShouldNotHaveFailed)
	sc.Step(`^the cargo hold should be reported full$`, lc.theCargoHoldShouldBeReportedFull)
	sc.Step(`^the vehicle should no longer be loading$`, lc.theVehicleShouldNoLongerBeLoading)
	sc.Step(`^the vehicle should be attached to the settlement$`, lc.theVehicleShouldBeAttached)
	sc.Step(`^no loading session should be active$`, lc.noLoadingSessionShouldBeActive)
	sc.Step(`^the recorded outcome should be "([^"]*)"$`, lc.theRecordedOutcomeShouldBe)
	sc.Step(`^the recorded session loaded (\d+(?:\.\d+)?) kg$`, lc.theRecordedSessionLoaded)
	sc.Step(`^the event log should contain an? (INFO|WARN|ERROR) event "([^"]*)"$`, lc.theEventLogShouldContain)
	sc.Step(`^the session event log should have (\d+) entries$`, lc.theSessionEventLogShouldHaveEntries)
	sc.Step(`^the load should be rejected$`, lc.theLoadShouldBeRejected)
}
