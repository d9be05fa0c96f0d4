package loading_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/settlement"
	"github.com/andrescamacho/supplyload-go/internal/domain/vehicle"
)

// strengthWorker with strength 50 has a strength modifier of exactly 1.0,
// so 12 time units buy 20 kg at the default load rate
type strengthWorker float64

func (w strengthWorker) NormalizedStrength() float64 { return float64(w) }

const crew = strengthWorker(50)

// timeFor returns the time crew needs to move kg
func timeFor(kg float64) float64 { return kg * 12 / 20 }

type fixture struct {
	catalog    *resource.Catalog
	settlement *settlement.Settlement
	vehicle    *vehicle.Vehicle
}

func newFixture(t *testing.T, cargoCapacity float64) *fixture {
	t.Helper()

	catalog := resource.DefaultCatalog()
	s, err := settlement.New("Schiaparelli", catalog)
	require.NoError(t, err)
	v, err := vehicle.New("Rover-1", cargoCapacity, catalog)
	require.NoError(t, err)

	v.SetLoading(true)
	v.SetAwaitingFuel(true)
	s.Park(v)

	return &fixture{catalog: catalog, settlement: s, vehicle: v}
}

func (f *fixture) begin(t *testing.T, spec loading.ManifestSpec) *loading.Controller {
	t.Helper()

	manifest, err := loading.NewManifest(spec)
	require.NoError(t, err)
	c, err := loading.Begin(manifest, f.settlement, f.vehicle, loading.Options{Catalog: f.catalog})
	require.NoError(t, err)
	return c
}

func newBarrel(t *testing.T, mass float64) *resource.Equipment {
	t.Helper()
	unit, err := resource.NewEquipment(resource.EquipmentBarrel, mass)
	require.NoError(t, err)
	return unit
}

func TestBegin_EmptyManifestIsCompleted(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)

	// Act
	c := f.begin(t, loading.ManifestSpec{})

	// Assert
	assert.True(t, c.IsCompleted())
	assert.False(t, c.IsFailure())
	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
}

func TestBegin_RejectsNilCollaborators(t *testing.T) {
	f := newFixture(t, 1000)

	_, err := loading.Begin(loading.EmptyManifest(), nil, f.vehicle, loading.Options{})
	assert.ErrorIs(t, err, loading.ErrNilCollaborator)

	_, err = loading.Begin(loading.EmptyManifest(), f.settlement, nil, loading.Options{})
	assert.ErrorIs(t, err, loading.ErrNilCollaborator)
}

func TestBegin_ClampsRequestToInstalledCapacity(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.vehicle.SetAmountCapacity(resource.Oxygen, 100))
	require.NoError(t, f.vehicle.DepositAmount(resource.Oxygen, 30))

	// Act
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 500},
	})

	// Assert
	assert.InDelta(t, 70, c.MandatoryResources()[resource.Oxygen], 1e-9)
}

func TestBegin_SubtractsCargoAlreadyOnBoardMandatoryFirst(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.vehicle.DepositAmount(resource.Water, 50))

	// Act
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 40},
		OptionalResources:  map[resource.ResourceID]float64{resource.Water: 30},
	})

	// Assert
	assert.NotContains(t, c.MandatoryResources(), resource.Water)
	assert.InDelta(t, 20, c.OptionalResources()[resource.Water], 1e-9)
}

func TestBegin_SubtractsEmptyContainersOnBoard(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.vehicle.DepositEquipment(newBarrel(t, 5)))
	require.NoError(t, f.vehicle.DepositEquipment(newBarrel(t, 5)))

	// Act
	c := f.begin(t, loading.ManifestSpec{
		MandatoryEquipment: map[resource.EquipmentKind]int{resource.EquipmentBarrel: 1},
		OptionalEquipment:  map[resource.EquipmentKind]int{resource.EquipmentBarrel: 2},
	})

	// Assert
	assert.Empty(t, c.MandatoryEquipment())
	assert.Equal(t, 1, c.OptionalEquipment()[resource.EquipmentBarrel])
}

func TestLoad_RejectsNegativeTime(t *testing.T) {
	f := newFixture(t, 1000)
	c := f.begin(t, loading.ManifestSpec{})

	_, err := c.Load(crew, -1)
	assert.ErrorIs(t, err, loading.ErrNegativeTime)

	_, err = c.Load(nil, 10)
	assert.ErrorIs(t, err, loading.ErrNilCollaborator)
}

func TestLoad_ZeroTimeChangesNothing(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 10))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 100, resource.Oxygen: 20},
		OptionalEquipment:  map[resource.EquipmentKind]int{resource.EquipmentBag: 2},
	})
	mandatory := c.MandatoryResources()
	optional := c.OptionalEquipment()

	// Act
	result, err := c.Load(crew, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, mandatory, c.MandatoryResources())
	assert.Equal(t, optional, c.OptionalEquipment())
	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
	assert.Zero(t, result.TotalLoaded())
	assert.False(t, result.Finished)
	assert.InDelta(t, 10, f.settlement.OwnedAmount(resource.Water), 1e-9)
}

func TestLoad_MandatoryShortageLoadsNothingUntilRestocked(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 50))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 80},
	})

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Shortages)
	assert.Equal(t, 4, c.RetryAttempts())
	assert.InDelta(t, 80, c.MandatoryResources()[resource.Water], 1e-9)
	assert.Zero(t, f.vehicle.StoredAmount(resource.Water))
	assert.True(t, result.Finished)
	assert.False(t, result.Completed)

	// Act - restock and retry
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 50))
	result, err = c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 4, c.RetryAttempts())
	assert.InDelta(t, 80, f.vehicle.StoredAmount(resource.Water), 1e-9)
	assert.InDelta(t, 20, f.settlement.OwnedAmount(resource.Water), 1e-9)
	assert.False(t, f.vehicle.IsLoading())
	assert.False(t, f.vehicle.IsAwaitingFuel())
}

func TestLoad_OptionalShortageTakesWhatIsThereAndDrops(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Methane, 3))
	c := f.begin(t, loading.ManifestSpec{
		OptionalResources: map[resource.ResourceID]float64{resource.Methane: 10},
	})

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 3, f.vehicle.StoredAmount(resource.Methane), 1e-9)
	assert.Empty(t, c.OptionalResources())
	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
	assert.True(t, result.Completed)
}

func TestLoad_HoldFullCompletesWithEntriesOutstanding(t *testing.T) {
	// Arrange
	f := newFixture(t, 100)
	require.NoError(t, f.settlement.StoreAmount(resource.Oxygen, 200))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 92, resource.Food: 50},
	})

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.HoldFull)
	assert.True(t, result.Completed)
	assert.True(t, c.IsHoldFull())
	assert.Contains(t, c.MandatoryResources(), resource.Food)
	assert.InDelta(t, 92, f.vehicle.StoredAmount(resource.Oxygen), 1e-9)
	assert.False(t, f.vehicle.IsLoading())
}

func TestLoad_RepeatedShortagesExhaustRetries(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 10},
	})

	// Act & Assert
	for want := loading.DefaultMaxRetryAttempts - 1; want >= 0; want-- {
		result, err := c.Load(crew, timeFor(10))
		require.NoError(t, err)
		assert.Equal(t, want, c.RetryAttempts())
		assert.Equal(t, want == 0, result.Failed)
	}
	assert.True(t, c.IsFailure())

	_, err := c.Load(crew, timeFor(10))
	require.NoError(t, err)
	assert.Zero(t, c.RetryAttempts())
}

func TestLoad_EachShortIDCostsOneRetry(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 10, resource.Water: 10},
	})

	// Act
	result, err := c.Load(crew, timeFor(100))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Shortages)
	assert.Equal(t, loading.DefaultMaxRetryAttempts-2, c.RetryAttempts())
}

func TestLoad_NeverLoadsMoreThanRequested(t *testing.T) {
	// Arrange
	f := newFixture(t, 10000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 1000))
	require.NoError(t, f.settlement.StoreAmount(resource.Oxygen, 1000))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 300},
		OptionalResources:  map[resource.ResourceID]float64{resource.Water: 200, resource.Oxygen: 150},
	})

	// Act
	ticks := 0
	for !c.IsCompleted() && ticks < 200 {
		_, err := c.Load(crew, timeFor(10))
		require.NoError(t, err)
		ticks++
	}

	// Assert
	assert.True(t, c.IsCompleted())
	assert.Equal(t, 65, ticks)
	assert.InDelta(t, 500, f.vehicle.StoredAmount(resource.Water), 1e-6)
	assert.InDelta(t, 150, f.vehicle.StoredAmount(resource.Oxygen), 1e-6)
	assert.InDelta(t, 500, f.settlement.OwnedAmount(resource.Water), 1e-6)
}

func TestLoad_SpendsBudgetOnMandatoryEquipmentFirst(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	f.settlement.AddEquipment(newBarrel(t, 5))
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 200))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryEquipment: map[resource.EquipmentKind]int{resource.EquipmentBarrel: 1},
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 100},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.Empty(t, c.MandatoryEquipment())
	assert.Equal(t, 1, f.vehicle.EmptyContainerCount(resource.EquipmentBarrel))
	assert.InDelta(t, 5, f.vehicle.StoredAmount(resource.Water), 1e-9)
	assert.InDelta(t, 95, c.MandatoryResources()[resource.Water], 1e-9)
	assert.InDelta(t, 5, result.Loaded[loading.CategoryMandatoryEquipment], 1e-9)
	assert.InDelta(t, 5, result.Loaded[loading.CategoryMandatoryResources], 1e-9)
	assert.Zero(t, result.Remaining)
	assert.False(t, result.Finished)
}

func TestLoad_ItemsMoveAtLeastOneUnit(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreItems(resource.WheelItem, 10))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.WheelItem: 3},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.vehicle.StoredItemCount(resource.WheelItem))
	assert.Equal(t, 9, f.settlement.OwnedItemCount(resource.WheelItem))
	assert.InDelta(t, 2, c.MandatoryResources()[resource.WheelItem], 1e-9)
	assert.Zero(t, result.Remaining)
	assert.InDelta(t, 12.5, result.Loaded[loading.CategoryMandatoryResources], 1e-9)
}

func TestLoad_ItemsLoadWhatFitsInTheHold(t *testing.T) {
	// Arrange
	f := newFixture(t, 20)
	require.NoError(t, f.settlement.StoreItems(resource.WheelItem, 10))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.WheelItem: 3},
	})

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.vehicle.StoredItemCount(resource.WheelItem))
	assert.InDelta(t, 2, c.MandatoryResources()[resource.WheelItem], 1e-9)
	assert.True(t, result.HoldFull)
	assert.True(t, result.Completed)
}

func TestLoad_FailedTransferLeavesBothSidesUntouched(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 100))
	f.vehicle.SetDepositFault(func(string) error { return errors.New("hatch jammed") })
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 30},
	})

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.TransferFailures)
	assert.InDelta(t, 100, f.settlement.OwnedAmount(resource.Water), 1e-9)
	assert.Zero(t, f.vehicle.StoredAmount(resource.Water))
	assert.InDelta(t, 30, c.MandatoryResources()[resource.Water], 1e-9)
	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
}

func TestLoad_DetachesVehicleWhileMovingCargo(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.vehicle.DepositAmount(resource.Water, 40))
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 10))

	var detachedDuringWithdraw bool
	f.settlement.SetFaults(&settlement.Faults{
		WithdrawAmount: func(resource.ResourceID, float64) error {
			detachedDuringWithdraw = f.settlement.IsDetached(f.vehicle)
			return nil
		},
	})

	// 40 on board covers 40 of the request, and the settlement only owns 10
	// of the remaining 30. Counting the parked vehicle's water would hide
	// the shortage.
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 70},
	})
	assert.InDelta(t, 50, f.settlement.StoredAmount(resource.Water), 1e-9)

	// Act
	result, err := c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Shortages)
	assert.InDelta(t, 40, f.vehicle.StoredAmount(resource.Water), 1e-9)
	assert.True(t, f.settlement.IsParkedHere(f.vehicle))
	assert.False(t, f.settlement.IsDetached(f.vehicle))

	// Act - enough stock now, withdraw runs while detached
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 20))
	_, err = c.Load(crew, timeFor(1000))

	// Assert
	require.NoError(t, err)
	assert.True(t, detachedDuringWithdraw)
	assert.True(t, f.settlement.IsParkedHere(f.vehicle))
	assert.InDelta(t, 70, f.vehicle.StoredAmount(resource.Water), 1e-9)
}

func TestLoad_OptionalEquipmentIsDroppedWhenSourceRunsOut(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	bag, err := resource.NewEquipment(resource.EquipmentBag, 1)
	require.NoError(t, err)
	f.settlement.AddEquipment(bag)
	c := f.begin(t, loading.ManifestSpec{
		OptionalEquipment: map[resource.EquipmentKind]int{resource.EquipmentBag: 2},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.Empty(t, c.OptionalEquipment())
	assert.Equal(t, 1, result.Abandoned)
	assert.Equal(t, 1, f.vehicle.EmptyContainerCount(resource.EquipmentBag))
	assert.True(t, result.Completed)
}

func TestLoad_MandatoryEquipmentShortageCostsARetry(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	c := f.begin(t, loading.ManifestSpec{
		MandatoryEquipment: map[resource.EquipmentKind]int{resource.EquipmentBarrel: 2},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Shortages)
	assert.Equal(t, 2, c.MandatoryEquipment()[resource.EquipmentBarrel])
	assert.Equal(t, loading.DefaultMaxRetryAttempts-1, c.RetryAttempts())
}

func TestBackgroundLoad_OnlyTopsUpLifeSupport(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Oxygen, 100))
	require.NoError(t, f.settlement.StoreAmount(resource.Regolith, 100))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 50, resource.Regolith: 50},
	})

	// Act - 20 kg/12 units * 0.1 modifier * 60 units = 10 kg
	stats, err := c.BackgroundLoad(60)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 10, stats.Budget, 1e-9)
	assert.InDelta(t, 10, stats.Loaded[loading.CategoryLifeSupport], 1e-9)
	assert.InDelta(t, 40, c.MandatoryResources()[resource.Oxygen], 1e-9)
	assert.InDelta(t, 50, c.MandatoryResources()[resource.Regolith], 1e-9)
	assert.Zero(t, f.vehicle.StoredAmount(resource.Regolith))

	_, err = c.BackgroundLoad(-5)
	assert.ErrorIs(t, err, loading.ErrNegativeTime)
}

func TestLoad_LeftoverBudgetFinishesTheWorker(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 500))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 5},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5, result.Remaining, 1e-9)
	assert.True(t, result.Finished)
	assert.True(t, result.Completed)
}

func TestDumpContents_ListsOutstandingEntries(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 12.5},
		OptionalEquipment:  map[resource.EquipmentKind]int{resource.EquipmentBag: 3},
	})

	// Act
	dump := c.DumpContents()

	// Assert
	assert.True(t, strings.HasPrefix(dump, "Loading Rover-1: retries left 5"))
	assert.Contains(t, dump, "Mandatory equipment: none")
	assert.Contains(t, dump, "oxygen")
	assert.Contains(t, dump, "12.500 kg")
	assert.Contains(t, dump, string(resource.EquipmentBag))
}

func TestLoad_EquipmentThatFailsToTransferIsNotAShortage(t *testing.T) {
	// Arrange - 20 kg of free cargo mass, both barrels weigh 25 kg
	f := newFixture(t, 100)
	require.NoError(t, f.vehicle.DepositAmount(resource.Water, 80))
	f.settlement.AddEquipment(newBarrel(t, 25), newBarrel(t, 25))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryEquipment: map[resource.EquipmentKind]int{resource.EquipmentBarrel: 1},
	})

	for i := 0; i < loading.DefaultMaxRetryAttempts; i++ {
		// Act
		result, err := c.Load(crew, timeFor(100))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, result.TransferFailures, "tick %d", i)
		assert.Zero(t, result.Shortages, "tick %d", i)
		assert.False(t, result.Failed, "tick %d", i)
		assert.False(t, result.Completed, "tick %d", i)
	}

	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
	assert.Equal(t, 1, c.MandatoryEquipment()[resource.EquipmentBarrel])
	assert.Equal(t, 2, f.settlement.EquipmentCount(resource.EquipmentBarrel))
	assert.Zero(t, f.vehicle.EmptyContainerCount(resource.EquipmentBarrel))
}

func TestLoad_OptionalEquipmentThatFailsToTransferStaysRequested(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	bag, err := resource.NewEquipment(resource.EquipmentBag, 1)
	require.NoError(t, err)
	f.settlement.AddEquipment(bag)
	f.vehicle.SetDepositFault(func(string) error { return errors.New("hatch jammed") })
	c := f.begin(t, loading.ManifestSpec{
		OptionalEquipment: map[resource.EquipmentKind]int{resource.EquipmentBag: 1},
	})

	// Act
	result, err := c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.TransferFailures)
	assert.Zero(t, result.Abandoned)
	assert.Equal(t, 1, c.OptionalEquipment()[resource.EquipmentBag])
	assert.Equal(t, 1, f.settlement.EquipmentCount(resource.EquipmentBag))

	// Act - the fault clears
	f.vehicle.SetDepositFault(nil)
	result, err = c.Load(crew, timeFor(10))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 1, f.vehicle.EmptyContainerCount(resource.EquipmentBag))
}

func TestLoad_ShrunkTankLoadsWhatFitsThenGivesUp(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Water, 500))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Water: 100},
	})
	require.NoError(t, f.vehicle.SetAmountCapacity(resource.Water, 60))

	// Act
	first, err := c.Load(crew, timeFor(1000))

	// Assert - clamped to the 60 kg of room
	require.NoError(t, err)
	assert.InDelta(t, 60, f.vehicle.StoredAmount(resource.Water), 1e-9)
	assert.InDelta(t, 40, c.MandatoryResources()[resource.Water], 1e-9)
	assert.Zero(t, first.Shortages)
	assert.Zero(t, first.Abandoned)
	assert.False(t, first.Completed)

	// Act
	second, err := c.Load(crew, timeFor(1000))

	// Assert - no room left, the entry is abandoned without a retry
	require.NoError(t, err)
	assert.InDelta(t, 60, f.vehicle.StoredAmount(resource.Water), 1e-9)
	assert.Empty(t, c.MandatoryResources())
	assert.Equal(t, 1, second.Abandoned)
	assert.True(t, second.Completed)
	assert.False(t, second.HoldFull)
	assert.Equal(t, loading.DefaultMaxRetryAttempts, c.RetryAttempts())
	assert.False(t, f.vehicle.IsLoading())
}

func TestLoad_HugeBudgetStillLoadsEveryItem(t *testing.T) {
	// Arrange
	f := newFixture(t, 20000)
	require.NoError(t, f.settlement.StoreItems(resource.WheelItem, 1000))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.WheelItem: 1000},
	})

	// Act
	result, err := c.Load(crew, timeFor(1e25))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1000, f.vehicle.StoredItemCount(resource.WheelItem))
	assert.Empty(t, c.MandatoryResources())
	assert.True(t, result.Completed)
}

func TestBackgroundLoad_DrainingLastEntryFinalizes(t *testing.T) {
	// Arrange
	f := newFixture(t, 1000)
	require.NoError(t, f.settlement.StoreAmount(resource.Oxygen, 100))
	c := f.begin(t, loading.ManifestSpec{
		MandatoryResources: map[resource.ResourceID]float64{resource.Oxygen: 10},
	})

	// Act - 10 kg of background budget
	_, err := c.BackgroundLoad(60)

	// Assert
	require.NoError(t, err)
	assert.True(t, c.IsCompleted())
	assert.InDelta(t, 10, f.vehicle.StoredAmount(resource.Oxygen), 1e-9)
	assert.False(t, f.vehicle.IsLoading())
	assert.False(t, f.vehicle.IsAwaitingFuel())
}
