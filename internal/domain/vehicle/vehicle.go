package vehicle

import (
	"fmt"
	"math"
	"sync"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// depositTolerance absorbs the rounding of loadable masses to 1e-6 kg
const depositTolerance = 1e-6

// Vehicle is an in-memory cargo hold.
//
// Capacity model:
// - cargoCapacity bounds the total stored mass (amounts + items + equipment)
// - amountCapacity optionally bounds individual amount resources; a resource
//   without an entry is limited only by the total
//
// Thread-Safety: all operations are protected by a mutex.
type Vehicle struct {
	mu sync.RWMutex

	name           string
	cargoCapacity  float64
	amountCapacity map[resource.ResourceID]float64
	amounts        map[resource.ResourceID]float64
	items          map[resource.ResourceID]int
	equipment      []loading.EquipmentHandle
	catalog        *resource.Catalog

	awaitingFuel bool
	loading      bool

	depositFault func(what string) error
}

// New creates an empty vehicle with the given total cargo capacity in kg
func New(name string, cargoCapacity float64, catalog *resource.Catalog) (*Vehicle, error) {
	if name == "" {
		return nil, fmt.Errorf("vehicle name cannot be empty")
	}
	if cargoCapacity < 0 || math.IsNaN(cargoCapacity) {
		return nil, fmt.Errorf("cargo capacity cannot be negative")
	}
	if catalog == nil {
		catalog = resource.DefaultCatalog()
	}

	return &Vehicle{
		name:           name,
		cargoCapacity:  cargoCapacity,
		amountCapacity: make(map[resource.ResourceID]float64),
		amounts:        make(map[resource.ResourceID]float64),
		items:          make(map[resource.ResourceID]int),
		catalog:        catalog,
	}, nil
}

// Getters

func (v *Vehicle) Name() string           { return v.name }
func (v *Vehicle) CargoCapacity() float64 { return v.cargoCapacity }

// SetAmountCapacity installs a per-resource capacity (e.g. a tank)
func (v *Vehicle) SetAmountCapacity(id resource.ResourceID, capacity float64) error {
	if !id.IsValid() || id.IsItem() {
		return shared.NewValidationError("resource", fmt.Sprintf("%s is not an amount resource", id))
	}
	if capacity < 0 {
		return shared.NewValidationError("capacity", "cannot be negative")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.amountCapacity[id] = capacity
	return nil
}

// SetAwaitingFuel flags the vehicle as waiting for fuel before departure
func (v *Vehicle) SetAwaitingFuel(awaiting bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.awaitingFuel = awaiting
}

// SetLoading flags the vehicle as being loaded
func (v *Vehicle) SetLoading(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = active
}

func (v *Vehicle) IsAwaitingFuel() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.awaitingFuel
}

func (v *Vehicle) IsLoading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

func (v *Vehicle) ClearAwaitingFuelFlag() { v.SetAwaitingFuel(false) }
func (v *Vehicle) ClearLoadingStatus()    { v.SetLoading(false) }

// SetDepositFault makes deposits fail while fn returns an error; nil clears it
func (v *Vehicle) SetDepositFault(fn func(what string) error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.depositFault = fn
}

// Queries

func (v *Vehicle) StoredAmount(id resource.ResourceID) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.amounts[id]
}

func (v *Vehicle) StoredItemCount(id resource.ResourceID) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.items[id]
}

// AmountCapacity returns the installed capacity for a resource, which is the
// total cargo capacity when no dedicated capacity is set
func (v *Vehicle) AmountCapacity(id resource.ResourceID) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.amountCapacityUnsafe(id)
}

func (v *Vehicle) amountCapacityUnsafe(id resource.ResourceID) float64 {
	if capacity, ok := v.amountCapacity[id]; ok {
		return capacity
	}
	return v.cargoCapacity
}

// RemainingAmountCapacity is the smaller of the resource's own headroom and the free cargo mass
func (v *Vehicle) RemainingAmountCapacity(id resource.ResourceID) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.remainingAmountCapacityUnsafe(id)
}

func (v *Vehicle) remainingAmountCapacityUnsafe(id resource.ResourceID) float64 {
	own := v.amountCapacityUnsafe(id) - v.amounts[id]
	return math.Max(0, math.Min(own, v.remainingCargoCapacityUnsafe()))
}

func (v *Vehicle) RemainingCargoCapacity() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.remainingCargoCapacityUnsafe()
}

func (v *Vehicle) remainingCargoCapacityUnsafe() float64 {
	return math.Max(0, v.cargoCapacity-v.storedMassUnsafe())
}

// StoredMass is the total mass on board in kg
func (v *Vehicle) StoredMass() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.storedMassUnsafe()
}

func (v *Vehicle) storedMassUnsafe() float64 {
	total := 0.0
	for _, kg := range v.amounts {
		total += kg
	}
	for id, count := range v.items {
		total += float64(count) * v.catalog.UnitMass(id)
	}
	for _, unit := range v.equipment {
		total += unit.Mass()
	}
	return total
}

func (v *Vehicle) MassPerUnit(id resource.ResourceID) float64 {
	return v.catalog.UnitMass(id)
}

func (v *Vehicle) EmptyContainerCount(kind resource.EquipmentKind) int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	count := 0
	for _, unit := range v.equipment {
		if unit.Kind() == kind {
			count++
		}
	}
	return count
}

// Deposits

func (v *Vehicle) DepositAmount(id resource.ResourceID, quantity float64) error {
	if !id.IsValid() || id.IsItem() {
		return shared.NewValidationError("resource", fmt.Sprintf("%s is not an amount resource", id))
	}
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "deposit amount must be positive")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkFaultUnsafe(id.String()); err != nil {
		return err
	}

	if room := v.remainingAmountCapacityUnsafe(id); quantity > room+depositTolerance {
		return shared.NewCapacityExceededError(v.name, v.catalog.Name(id), quantity, room)
	}

	v.amounts[id] += quantity
	return nil
}

func (v *Vehicle) DepositItems(id resource.ResourceID, quantity int) error {
	if !id.IsItem() {
		return shared.NewValidationError("resource", fmt.Sprintf("%s is not an item resource", id))
	}
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "deposit count must be positive")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkFaultUnsafe(id.String()); err != nil {
		return err
	}

	mass := float64(quantity) * v.catalog.UnitMass(id)
	if room := v.remainingCargoCapacityUnsafe(); mass > room+depositTolerance {
		return shared.NewCapacityExceededError(v.name, v.catalog.Name(id), mass, room)
	}

	v.items[id] += quantity
	return nil
}

func (v *Vehicle) DepositEquipment(unit loading.EquipmentHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkFaultUnsafe(string(unit.Kind())); err != nil {
		return err
	}

	if room := v.remainingCargoCapacityUnsafe(); unit.Mass() > room+depositTolerance {
		return shared.NewCapacityExceededError(v.name, string(unit.Kind()), unit.Mass(), room)
	}

	v.equipment = append(v.equipment, unit)
	return nil
}

func (v *Vehicle) checkFaultUnsafe(what string) error {
	if v.depositFault == nil {
		return nil
	}
	return v.depositFault(what)
}

// String provides human-readable representation
func (v *Vehicle) String() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return fmt.Sprintf("Vehicle[%s, cargo=%.2f/%.2fkg, equipment=%d]",
		v.name, v.storedMassUnsafe(), v.cargoCapacity, len(v.equipment))
}
