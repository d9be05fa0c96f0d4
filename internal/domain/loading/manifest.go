package loading

import (
	"math"
	"strconv"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// Manifest is the immutable bundle requested for one loading session.
// A quantity of zero is equivalent to absence and is dropped at construction.
type Manifest struct {
	mandatoryResources map[resource.ResourceID]float64
	optionalResources  map[resource.ResourceID]float64
	mandatoryEquipment map[resource.EquipmentKind]int
	optionalEquipment  map[resource.EquipmentKind]int
}

// ManifestSpec holds the raw requested quantities used to build a Manifest.
// Item resource quantities must be whole numbers.
type ManifestSpec struct {
	MandatoryResources map[resource.ResourceID]float64
	OptionalResources  map[resource.ResourceID]float64
	MandatoryEquipment map[resource.EquipmentKind]int
	OptionalEquipment  map[resource.EquipmentKind]int
}

// NewManifest validates and copies the requested quantities
func NewManifest(spec ManifestSpec) (*Manifest, error) {
	mandatoryResources, err := copyResources(spec.MandatoryResources)
	if err != nil {
		return nil, err
	}
	optionalResources, err := copyResources(spec.OptionalResources)
	if err != nil {
		return nil, err
	}
	mandatoryEquipment, err := copyEquipment(spec.MandatoryEquipment)
	if err != nil {
		return nil, err
	}
	optionalEquipment, err := copyEquipment(spec.OptionalEquipment)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		mandatoryResources: mandatoryResources,
		optionalResources:  optionalResources,
		mandatoryEquipment: mandatoryEquipment,
		optionalEquipment:  optionalEquipment,
	}, nil
}

// EmptyManifest returns a manifest with nothing requested
func EmptyManifest() *Manifest {
	m, _ := NewManifest(ManifestSpec{})
	return m
}

func copyResources(in map[resource.ResourceID]float64) (map[resource.ResourceID]float64, error) {
	out := make(map[resource.ResourceID]float64, len(in))
	for id, quantity := range in {
		if !id.IsValid() {
			return nil, &ErrUnknownResource{ID: id}
		}
		if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
			return nil, &ErrInvalidManifest{Entry: id.String(), Reason: "quantity must be a finite non-negative number"}
		}
		if id.IsItem() && quantity != math.Trunc(quantity) {
			return nil, &ErrInvalidManifest{Entry: id.String(), Reason: "item quantity must be a whole number"}
		}
		if quantity == 0 {
			continue
		}
		out[id] = quantity
	}
	return out, nil
}

func copyEquipment(in map[resource.EquipmentKind]int) (map[resource.EquipmentKind]int, error) {
	out := make(map[resource.EquipmentKind]int, len(in))
	for kind, count := range in {
		if kind == "" {
			return nil, &ErrInvalidManifest{Entry: "equipment", Reason: "kind cannot be empty"}
		}
		if count < 0 {
			return nil, &ErrInvalidManifest{Entry: string(kind), Reason: "count cannot be negative: " + strconv.Itoa(count)}
		}
		if count == 0 {
			continue
		}
		out[kind] = count
	}
	return out, nil
}

// Getters return copies so the manifest stays immutable

func (m *Manifest) MandatoryResources() map[resource.ResourceID]float64 {
	return cloneResources(m.mandatoryResources)
}

func (m *Manifest) OptionalResources() map[resource.ResourceID]float64 {
	return cloneResources(m.optionalResources)
}

func (m *Manifest) MandatoryEquipment() map[resource.EquipmentKind]int {
	return cloneEquipment(m.mandatoryEquipment)
}

func (m *Manifest) OptionalEquipment() map[resource.EquipmentKind]int {
	return cloneEquipment(m.optionalEquipment)
}

// IsEmpty reports whether nothing at all is requested
func (m *Manifest) IsEmpty() bool {
	return len(m.mandatoryResources) == 0 && len(m.optionalResources) == 0 &&
		len(m.mandatoryEquipment) == 0 && len(m.optionalEquipment) == 0
}

func cloneResources(in map[resource.ResourceID]float64) map[resource.ResourceID]float64 {
	out := make(map[resource.ResourceID]float64, len(in))
	for id, quantity := range in {
		out[id] = quantity
	}
	return out
}

func cloneEquipment(in map[resource.EquipmentKind]int) map[resource.EquipmentKind]int {
	out := make(map[resource.EquipmentKind]int, len(in))
	for kind, count := range in {
		out[kind] = count
	}
	return out
}
