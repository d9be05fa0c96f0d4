package resource

import (
	"fmt"

	"github.com/google/uuid"
)

// EquipmentKind names a type of container or suit that can be carried as cargo
type EquipmentKind string

const (
	EquipmentBarrel      EquipmentKind = "barrel"
	EquipmentBag         EquipmentKind = "bag"
	EquipmentGasCanister EquipmentKind = "gas-canister"
	EquipmentSpecimenBox EquipmentKind = "specimen-box"
	EquipmentLargeBag    EquipmentKind = "large-bag"
	EquipmentEVASuit     EquipmentKind = "eva-suit"
)

// Equipment is a single empty unit of equipment
type Equipment struct {
	id   string
	kind EquipmentKind
	mass float64
}

// NewEquipment creates an equipment unit with a fresh id.
// mass is the unit's empty mass in kg.
func NewEquipment(kind EquipmentKind, mass float64) (*Equipment, error) {
	if kind == "" {
		return nil, fmt.Errorf("equipment kind cannot be empty")
	}
	if mass < 0 {
		return nil, fmt.Errorf("equipment mass cannot be negative")
	}

	return &Equipment{
		id:   uuid.NewString(),
		kind: kind,
		mass: mass,
	}, nil
}

func (e *Equipment) ID() string          { return e.id }
func (e *Equipment) Kind() EquipmentKind { return e.kind }
func (e *Equipment) Mass() float64       { return e.mass }

func (e *Equipment) String() string {
	return fmt.Sprintf("Equipment[%s %s, %.2fkg]", e.kind, e.id[:8], e.mass)
}
