package loading

import "github.com/andrescamacho/supplyload-go/internal/domain/resource"

// ResourceSource is the settlement-side stock a vehicle is loaded from.
//
// StoreAmount, StoreItems and StoreEquipment return stock to the source and
// are only used to undo a withdrawal whose matching deposit failed.
// Implementations are responsible for making each call atomic when the
// host runs sessions on several goroutines.
type ResourceSource interface {
	StoredAmount(id resource.ResourceID) float64
	StoredItemCount(id resource.ResourceID) int
	WithdrawAmount(id resource.ResourceID, quantity float64) error
	WithdrawItems(id resource.ResourceID, quantity int) error
	StoreAmount(id resource.ResourceID, quantity float64) error
	StoreItems(id resource.ResourceID, quantity int) error

	EmptyEquipmentOfKind(kind resource.EquipmentKind) []EquipmentHandle
	WithdrawEquipment(unit EquipmentHandle) error
	StoreEquipment(unit EquipmentHandle) error

	IsParkedHere(hold CargoHold) bool
	Detach(hold CargoHold)
	Attach(hold CargoHold)
}

// CargoHold is the vehicle-side destination of a loading session
type CargoHold interface {
	Name() string

	StoredAmount(id resource.ResourceID) float64
	AmountCapacity(id resource.ResourceID) float64
	RemainingAmountCapacity(id resource.ResourceID) float64
	StoredItemCount(id resource.ResourceID) int
	DepositAmount(id resource.ResourceID, quantity float64) error
	DepositItems(id resource.ResourceID, quantity int) error

	EmptyContainerCount(kind resource.EquipmentKind) int
	DepositEquipment(unit EquipmentHandle) error

	// RemainingCargoCapacity is the free cargo mass in kg across all resources
	RemainingCargoCapacity() float64
	// MassPerUnit is the mass in kg of one unit of an item resource
	MassPerUnit(id resource.ResourceID) float64

	ClearAwaitingFuelFlag()
	ClearLoadingStatus()
}

// Worker is whoever performs the loading during a tick
type Worker interface {
	// NormalizedStrength is the worker's strength attribute, already scaled by the caller
	NormalizedStrength() float64
}

// EquipmentHandle is one empty unit of equipment held by a source
type EquipmentHandle interface {
	ID() string
	Kind() resource.EquipmentKind
	Mass() float64
}

// Logger receives structured loading events.
// Same shape as the application-level event logger so either can be passed in.
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

type noOpLogger struct{}

func (noOpLogger) Log(level, message string, metadata map[string]interface{}) {}
