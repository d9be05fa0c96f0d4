package resource

import (
	"fmt"
	"sync"
)

// Catalog describes the resources known to a simulation: display names,
// per-unit masses of item resources and the life-support allow-list.
//
// Thread-Safety: reads and writes are guarded by a RWMutex.
type Catalog struct {
	mu sync.RWMutex

	names       map[ResourceID]string
	byName      map[string]ResourceID
	unitMass    map[ResourceID]float64
	lifeSupport []ResourceID
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		names:    make(map[ResourceID]string),
		byName:   make(map[string]ResourceID),
		unitMass: make(map[ResourceID]float64),
	}
}

// Register adds a resource. unitMass is required for item resources and
// ignored for amount resources.
func (c *Catalog) Register(id ResourceID, name string, unitMass float64) error {
	if !id.IsValid() {
		return fmt.Errorf("cannot register invalid resource id")
	}
	if name == "" {
		return fmt.Errorf("resource %s: name cannot be empty", id)
	}
	if id.IsItem() && unitMass <= 0 {
		return fmt.Errorf("item resource %s: unit mass must be positive", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byName[name]; ok && existing != id {
		return fmt.Errorf("resource name %q already registered for %s", name, existing)
	}

	c.names[id] = name
	c.byName[name] = id
	if id.IsItem() {
		c.unitMass[id] = unitMass
	}
	return nil
}

// SetLifeSupport replaces the life-support allow-list
func (c *Catalog) SetLifeSupport(ids ...ResourceID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifeSupport = append([]ResourceID(nil), ids...)
}

// LifeSupport returns a copy of the life-support allow-list
func (c *Catalog) LifeSupport() []ResourceID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]ResourceID(nil), c.lifeSupport...)
}

// Name returns the display name, falling back to the id form
func (c *Catalog) Name(id ResourceID) string {
	if c == nil {
		return id.String()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if name, ok := c.names[id]; ok {
		return name
	}
	return id.String()
}

// Lookup finds a resource by display name
func (c *Catalog) Lookup(name string) (ResourceID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[name]
	return id, ok
}

// Resolve accepts either a registered display name or the "amount:12" form
func (c *Catalog) Resolve(s string) (ResourceID, error) {
	if c != nil {
		if id, ok := c.Lookup(s); ok {
			return id, nil
		}
	}
	id, err := ParseResourceID(s)
	if err != nil {
		return ResourceID{}, fmt.Errorf("unknown resource %q", s)
	}
	return id, nil
}

// Known reports whether the id has been registered
func (c *Catalog) Known(id ResourceID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.names[id]
	return ok
}

// UnitMass returns the mass in kg of one unit of an item resource (0 if unknown)
func (c *Catalog) UnitMass(id ResourceID) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.unitMass[id]
}

// Standard ids used by the default catalog
var (
	Oxygen         = Amount(1)
	Water          = Amount(2)
	Food           = Amount(3)
	Methane        = Amount(4)
	Hydrogen       = Amount(5)
	Regolith       = Amount(6)
	Ice            = Amount(7)
	Methanol       = Amount(8)
	WheelItem      = Item(1001)
	SparePartsItem = Item(1002)
	BatteryItem    = Item(1003)
)

// DefaultCatalog returns a catalog populated with the standard resources
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, r := range []struct {
		id   ResourceID
		name string
		mass float64
	}{
		{Oxygen, "oxygen", 0},
		{Water, "water", 0},
		{Food, "food", 0},
		{Methane, "methane", 0},
		{Hydrogen, "hydrogen", 0},
		{Regolith, "regolith", 0},
		{Ice, "ice", 0},
		{Methanol, "methanol", 0},
		{WheelItem, "wheel", 12.5},
		{SparePartsItem, "spare parts", 2},
		{BatteryItem, "battery", 8},
	} {
		// Registration of the fixed table cannot fail
		_ = c.Register(r.id, r.name, r.mass)
	}
	c.SetLifeSupport(Oxygen, Water, Food)
	return c
}
