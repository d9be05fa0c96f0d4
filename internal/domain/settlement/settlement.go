package settlement

import (
	"fmt"
	"slices"
	"sync"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
)

// Settlement is an in-memory resource source vehicles are loaded from.
//
// Thread-Safety:
// All stock operations are protected by a mutex so one settlement can serve
// loading sessions driven from different goroutines. Each call is atomic on
// its own; sessions touching the same stock are not coordinated.
//
// Invariants:
// - Stored amounts and item counts never go negative
// - A vehicle is either parked (registered) or detached, never both
type Settlement struct {
	mu sync.RWMutex

	name      string
	amounts   map[resource.ResourceID]float64
	items     map[resource.ResourceID]int
	equipment map[resource.EquipmentKind][]loading.EquipmentHandle
	parked    map[string]loading.CargoHold
	detached  map[string]loading.CargoHold
	catalog   *resource.Catalog
	faults    *Faults
}

// Faults lets tests make individual stock operations fail
type Faults struct {
	WithdrawAmount    func(id resource.ResourceID, quantity float64) error
	WithdrawItems     func(id resource.ResourceID, quantity int) error
	WithdrawEquipment func(unit loading.EquipmentHandle) error
}

// New creates an empty settlement. catalog may be nil.
func New(name string, catalog *resource.Catalog) (*Settlement, error) {
	if name == "" {
		return nil, fmt.Errorf("settlement name cannot be empty")
	}

	return &Settlement{
		name:      name,
		amounts:   make(map[resource.ResourceID]float64),
		items:     make(map[resource.ResourceID]int),
		equipment: make(map[resource.EquipmentKind][]loading.EquipmentHandle),
		parked:    make(map[string]loading.CargoHold),
		detached:  make(map[string]loading.CargoHold),
		catalog:   catalog,
	}, nil
}

func (s *Settlement) Name() string { return s.name }

// SetFaults installs failure hooks; nil clears them
func (s *Settlement) SetFaults(f *Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// currentFaults is read before taking the write lock so hooks may query the settlement
func (s *Settlement) currentFaults() *Faults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults
}

// Stock queries

func (s *Settlement) StoredAmount(id resource.ResourceID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.amounts[id] + s.parkedAmountUnsafe(id)
}

func (s *Settlement) StoredItemCount(id resource.ResourceID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items[id] + s.parkedItemsUnsafe(id)
}

// OwnedAmount is the settlement's own stock, excluding parked vehicles
func (s *Settlement) OwnedAmount(id resource.ResourceID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amounts[id]
}

// OwnedItemCount is the settlement's own item stock, excluding parked vehicles
func (s *Settlement) OwnedItemCount(id resource.ResourceID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id]
}

// parkedAmountUnsafe is the settlement's view of what parked vehicles carry.
// Stock accounting lends it out like settlement stock, which is why a vehicle
// being loaded must be detached first.
func (s *Settlement) parkedAmountUnsafe(id resource.ResourceID) float64 {
	total := 0.0
	for _, hold := range s.parked {
		total += hold.StoredAmount(id)
	}
	return total
}

func (s *Settlement) parkedItemsUnsafe(id resource.ResourceID) int {
	total := 0
	for _, hold := range s.parked {
		total += hold.StoredItemCount(id)
	}
	return total
}

// Stock mutations

// StoreAmount adds bulk stock
func (s *Settlement) StoreAmount(id resource.ResourceID, quantity float64) error {
	if !id.IsValid() || id.IsItem() {
		return shared.NewValidationError("resource", fmt.Sprintf("%s is not an amount resource", id))
	}
	if quantity < 0 {
		return shared.NewValidationError("quantity", "cannot store a negative amount")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.amounts[id] += quantity
	return nil
}

// StoreItems adds item stock
func (s *Settlement) StoreItems(id resource.ResourceID, quantity int) error {
	if !id.IsItem() {
		return shared.NewValidationError("resource", fmt.Sprintf("%s is not an item resource", id))
	}
	if quantity < 0 {
		return shared.NewValidationError("quantity", "cannot store a negative count")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] += quantity
	return nil
}

// WithdrawAmount removes bulk stock owned by the settlement itself
func (s *Settlement) WithdrawAmount(id resource.ResourceID, quantity float64) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "withdraw amount must be positive")
	}

	if f := s.currentFaults(); f != nil && f.WithdrawAmount != nil {
		if err := f.WithdrawAmount(id, quantity); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.amounts[id]
	if stored < quantity {
		return shared.NewInsufficientStockError(s.name, s.catalog.Name(id), quantity, stored)
	}

	s.amounts[id] = stored - quantity
	if s.amounts[id] <= 0 {
		delete(s.amounts, id)
	}
	return nil
}

// WithdrawItems removes item stock owned by the settlement itself
func (s *Settlement) WithdrawItems(id resource.ResourceID, quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "withdraw count must be positive")
	}

	if f := s.currentFaults(); f != nil && f.WithdrawItems != nil {
		if err := f.WithdrawItems(id, quantity); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.items[id]
	if stored < quantity {
		return shared.NewInsufficientStockError(s.name, s.catalog.Name(id), float64(quantity), float64(stored))
	}

	s.items[id] = stored - quantity
	if s.items[id] == 0 {
		delete(s.items, id)
	}
	return nil
}

// Equipment

// AddEquipment adds empty equipment units to the pool
func (s *Settlement) AddEquipment(units ...loading.EquipmentHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, unit := range units {
		s.equipment[unit.Kind()] = append(s.equipment[unit.Kind()], unit)
	}
}

// EmptyEquipmentOfKind returns a snapshot of the empty units of a kind
func (s *Settlement) EmptyEquipmentOfKind(kind resource.EquipmentKind) []loading.EquipmentHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.equipment[kind])
}

// EquipmentCount returns the number of empty units of a kind
func (s *Settlement) EquipmentCount(kind resource.EquipmentKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.equipment[kind])
}

func (s *Settlement) WithdrawEquipment(unit loading.EquipmentHandle) error {
	if f := s.currentFaults(); f != nil && f.WithdrawEquipment != nil {
		if err := f.WithdrawEquipment(unit); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.equipment[unit.Kind()]
	idx := slices.IndexFunc(pool, func(u loading.EquipmentHandle) bool { return u.ID() == unit.ID() })
	if idx < 0 {
		return shared.NewStockError(s.name, fmt.Sprintf("equipment %s not held", unit.ID()))
	}

	s.equipment[unit.Kind()] = slices.Delete(pool, idx, idx+1)
	return nil
}

func (s *Settlement) StoreEquipment(unit loading.EquipmentHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.equipment[unit.Kind()]
	if slices.ContainsFunc(pool, func(u loading.EquipmentHandle) bool { return u.ID() == unit.ID() }) {
		return shared.NewStockError(s.name, fmt.Sprintf("equipment %s already held", unit.ID()))
	}

	s.equipment[unit.Kind()] = append(pool, unit)
	return nil
}

// Parking

// Park registers a vehicle as parked at the settlement
func (s *Settlement) Park(hold loading.CargoHold) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.detached, hold.Name())
	s.parked[hold.Name()] = hold
}

// Depart removes a vehicle from the settlement entirely
func (s *Settlement) Depart(hold loading.CargoHold) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.parked, hold.Name())
	delete(s.detached, hold.Name())
}

func (s *Settlement) IsParkedHere(hold loading.CargoHold) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.parked[hold.Name()]
	return ok
}

// Detach hides a parked vehicle from stock accounting until Attach
func (s *Settlement) Detach(hold loading.CargoHold) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parked[hold.Name()]; !ok {
		return
	}
	delete(s.parked, hold.Name())
	s.detached[hold.Name()] = hold
}

// Attach re-registers a vehicle hidden by Detach
func (s *Settlement) Attach(hold loading.CargoHold) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.detached[hold.Name()]; !ok {
		return
	}
	delete(s.detached, hold.Name())
	s.parked[hold.Name()] = hold
}

// IsDetached reports whether the vehicle is currently hidden by Detach
func (s *Settlement) IsDetached(hold loading.CargoHold) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.detached[hold.Name()]
	return ok
}

// String provides human-readable representation
func (s *Settlement) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units := 0
	for _, pool := range s.equipment {
		units += len(pool)
	}
	return fmt.Sprintf("Settlement[%s, amounts=%d, items=%d, equipment=%d, parked=%d]",
		s.name, len(s.amounts), len(s.items), units, len(s.parked))
}
