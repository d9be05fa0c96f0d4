package helpers

import (
	"fmt"
	"sync"
	"testing"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/settlement"
	"github.com/andrescamacho/supplyload-go/internal/domain/vehicle"
)

// FakeWorker is a loading worker with a fixed normalized strength
type FakeWorker struct {
	Strength float64
}

// NormalizedStrength returns the configured strength
func (w FakeWorker) NormalizedStrength() float64 { return w.Strength }

// AverageWorker has strength 50, a modifier of exactly 1.0: 20 kg per 12 time units
var AverageWorker = FakeWorker{Strength: 50}

// TimeToLoad returns the time an AverageWorker needs to move kg
func TimeToLoad(kg float64) float64 {
	return kg * 12 / 20
}

// Stock describes settlement inventory for fixtures
type Stock struct {
	Amounts   map[resource.ResourceID]float64
	Items     map[resource.ResourceID]int
	Equipment map[resource.EquipmentKind]int
}

// NewStockedSettlement creates a settlement holding the given stock.
// Equipment units weigh 1 kg each.
func NewStockedSettlement(t *testing.T, name string, stock Stock) *settlement.Settlement {
	t.Helper()

	s, err := settlement.New(name, resource.DefaultCatalog())
	if err != nil {
		t.Fatalf("failed to create settlement: %v", err)
	}

	for id, q := range stock.Amounts {
		if err := s.StoreAmount(id, q); err != nil {
			t.Fatalf("failed to stock %s: %v", id, err)
		}
	}
	for id, n := range stock.Items {
		if err := s.StoreItems(id, n); err != nil {
			t.Fatalf("failed to stock %s: %v", id, err)
		}
	}
	for kind, n := range stock.Equipment {
		for i := 0; i < n; i++ {
			unit, err := resource.NewEquipment(kind, 1)
			if err != nil {
				t.Fatalf("failed to create %s: %v", kind, err)
			}
			s.AddEquipment(unit)
		}
	}

	return s
}

// NewParkedVehicle creates a vehicle with the given cargo capacity, parks it
// at the settlement and flags it as loading and awaiting fuel
func NewParkedVehicle(t *testing.T, name string, capacity float64, at *settlement.Settlement) *vehicle.Vehicle {
	t.Helper()

	v, err := vehicle.New(name, capacity, resource.DefaultCatalog())
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	v.SetLoading(true)
	v.SetAwaitingFuel(true)
	if at != nil {
		at.Park(v)
	}
	return v
}

// LoggedEvent is one event captured by RecordingLogger
type LoggedEvent struct {
	Level    string
	Message  string
	Metadata map[string]interface{}
}

// RecordingLogger captures events in memory
type RecordingLogger struct {
	mu     sync.Mutex
	Events []LoggedEvent
}

// Log records the event
func (l *RecordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, LoggedEvent{Level: level, Message: message, Metadata: metadata})
}

// Count returns the number of events at the given level
func (l *RecordingLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.Events {
		if e.Level == level {
			n++
		}
	}
	return n
}

// String renders captured events, one per line, for assertion messages
func (l *RecordingLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := ""
	for _, e := range l.Events {
		out += fmt.Sprintf("[%s] %s\n", e.Level, e.Message)
	}
	return out
}
