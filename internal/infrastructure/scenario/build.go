package scenario

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/domain/settlement"
	"github.com/andrescamacho/supplyload-go/internal/domain/vehicle"
)

// Worker is a named loading worker
type Worker struct {
	Name     string
	Strength float64
}

// NormalizedStrength returns the worker's strength on the 0..100 scale
func (w Worker) NormalizedStrength() float64 { return w.Strength }

// Restock is stock delivered to the settlement before a tick
type Restock struct {
	Tick    int
	Amounts map[resource.ResourceID]float64
	Items   map[resource.ResourceID]int
}

// World is a built scenario ready to simulate. The vehicle is parked at the
// settlement and flagged as loading.
type World struct {
	Name           string
	Catalog        *resource.Catalog
	Settlement     *settlement.Settlement
	Vehicle        *vehicle.Vehicle
	Manifest       *loading.Manifest
	Workers        []Worker
	BackgroundTime float64
	Restocks       []Restock
}

// Build turns a validated document into domain objects
func Build(doc *Document) (*World, error) {
	catalog := resource.DefaultCatalog()
	for _, entry := range doc.Catalog {
		id, err := resource.ParseResourceID(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if err := catalog.Register(id, entry.Name, entry.UnitMassKg); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}

	r := resolver{catalog: catalog}

	source, err := r.settlement(doc.Settlement)
	if err != nil {
		return nil, err
	}
	hold, err := r.vehicle(doc.Vehicle)
	if err != nil {
		return nil, err
	}
	hold.SetLoading(true)
	hold.SetAwaitingFuel(true)
	source.Park(hold)

	manifest, err := r.manifest(doc.Manifest)
	if err != nil {
		return nil, err
	}

	workers := make([]Worker, 0, len(doc.Workers))
	for _, w := range doc.Workers {
		workers = append(workers, Worker{Name: w.Name, Strength: w.Strength})
	}

	restocks := make([]Restock, 0, len(doc.Restocks))
	for _, rd := range doc.Restocks {
		amounts, err := r.amounts("restock", rd.Amounts)
		if err != nil {
			return nil, err
		}
		items, err := r.items("restock", rd.Items)
		if err != nil {
			return nil, err
		}
		restocks = append(restocks, Restock{Tick: rd.Tick, Amounts: amounts, Items: items})
	}
	sort.SliceStable(restocks, func(i, j int) bool { return restocks[i].Tick < restocks[j].Tick })

	return &World{
		Name:           doc.Name,
		Catalog:        catalog,
		Settlement:     source,
		Vehicle:        hold,
		Manifest:       manifest,
		Workers:        workers,
		BackgroundTime: doc.BackgroundTime,
		Restocks:       restocks,
	}, nil
}

// RestocksFor returns the deliveries scheduled for a tick
func (w *World) RestocksFor(tick int) []Restock {
	var due []Restock
	for _, r := range w.Restocks {
		if r.Tick == tick {
			due = append(due, r)
		}
	}
	return due
}

// ApplyRestock delivers a restock to the settlement
func (w *World) ApplyRestock(r Restock) error {
	for _, id := range sortedIDs(r.Amounts) {
		if err := w.Settlement.StoreAmount(id, r.Amounts[id]); err != nil {
			return fmt.Errorf("restock at tick %d: %w", r.Tick, err)
		}
	}
	for _, id := range sortedIDs(r.Items) {
		if err := w.Settlement.StoreItems(id, r.Items[id]); err != nil {
			return fmt.Errorf("restock at tick %d: %w", r.Tick, err)
		}
	}
	return nil
}

type resolver struct {
	catalog *resource.Catalog
}

func (r resolver) settlement(doc SettlementDocument) (*settlement.Settlement, error) {
	s, err := settlement.New(doc.Name, r.catalog)
	if err != nil {
		return nil, err
	}

	amounts, err := r.amounts("settlement", doc.Amounts)
	if err != nil {
		return nil, err
	}
	for id, q := range amounts {
		if err := s.StoreAmount(id, q); err != nil {
			return nil, fmt.Errorf("settlement: %w", err)
		}
	}

	items, err := r.items("settlement", doc.Items)
	if err != nil {
		return nil, err
	}
	for id, n := range items {
		if err := s.StoreItems(id, n); err != nil {
			return nil, fmt.Errorf("settlement: %w", err)
		}
	}

	for _, kind := range sortedKinds(doc.Equipment) {
		for i := 0; i < doc.Equipment[kind]; i++ {
			unit, err := resource.NewEquipment(resource.EquipmentKind(kind), doc.EquipmentMassKg)
			if err != nil {
				return nil, fmt.Errorf("settlement: %w", err)
			}
			s.AddEquipment(unit)
		}
	}
	return s, nil
}

func (r resolver) vehicle(doc VehicleDocument) (*vehicle.Vehicle, error) {
	v, err := vehicle.New(doc.Name, doc.CargoCapacityKg, r.catalog)
	if err != nil {
		return nil, err
	}

	capacities, err := r.amounts("vehicle.amount_capacity", doc.AmountCapacity)
	if err != nil {
		return nil, err
	}
	for id, c := range capacities {
		if err := v.SetAmountCapacity(id, c); err != nil {
			return nil, fmt.Errorf("vehicle: %w", err)
		}
	}

	amounts, err := r.amounts("vehicle", doc.Amounts)
	if err != nil {
		return nil, err
	}
	for _, id := range sortedIDs(amounts) {
		if amounts[id] == 0 {
			continue
		}
		if err := v.DepositAmount(id, amounts[id]); err != nil {
			return nil, fmt.Errorf("vehicle: %w", err)
		}
	}

	items, err := r.items("vehicle", doc.Items)
	if err != nil {
		return nil, err
	}
	for _, id := range sortedIDs(items) {
		if items[id] == 0 {
			continue
		}
		if err := v.DepositItems(id, items[id]); err != nil {
			return nil, fmt.Errorf("vehicle: %w", err)
		}
	}
	return v, nil
}

func (r resolver) manifest(doc ManifestDocument) (*loading.Manifest, error) {
	mandatory, err := r.amounts("manifest.mandatory_resources", doc.MandatoryResources)
	if err != nil {
		return nil, err
	}
	optional, err := r.amounts("manifest.optional_resources", doc.OptionalResources)
	if err != nil {
		return nil, err
	}

	manifest, err := loading.NewManifest(loading.ManifestSpec{
		MandatoryResources: mandatory,
		OptionalResources:  optional,
		MandatoryEquipment: equipmentKinds(doc.MandatoryEquipment),
		OptionalEquipment:  equipmentKinds(doc.OptionalEquipment),
	})
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return manifest, nil
}

// amounts resolves resource keys; item resources are accepted as whole-unit quantities
func (r resolver) amounts(where string, in map[string]float64) (map[resource.ResourceID]float64, error) {
	out := make(map[resource.ResourceID]float64, len(in))
	for name, q := range in {
		id, err := r.catalog.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		out[id] = q
	}
	return out, nil
}

func (r resolver) items(where string, in map[string]int) (map[resource.ResourceID]int, error) {
	out := make(map[resource.ResourceID]int, len(in))
	for name, n := range in {
		id, err := r.catalog.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		if !id.IsItem() {
			return nil, fmt.Errorf("%s: %s is not an item resource", where, name)
		}
		out[id] = n
	}
	return out, nil
}

func equipmentKinds(in map[string]int) map[resource.EquipmentKind]int {
	out := make(map[resource.EquipmentKind]int, len(in))
	for kind, n := range in {
		out[resource.EquipmentKind(kind)] = n
	}
	return out
}

func sortedIDs[V any](m map[resource.ResourceID]V) []resource.ResourceID {
	ids := make([]resource.ResourceID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func sortedKinds(m map[string]int) []string {
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
