// Package scenario loads simulation scenarios: a settlement with stock, a
// parked vehicle, the manifest to load and the workers doing the loading.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
)

// Document is the YAML form of a scenario. Resource keys are catalog
// names ("water") or ids ("amount:2", "item:1001").
type Document struct {
	Name       string             `yaml:"name" validate:"required"`
	Catalog    []CatalogEntry     `yaml:"catalog" validate:"dive"`
	Settlement SettlementDocument `yaml:"settlement"`
	Vehicle    VehicleDocument    `yaml:"vehicle"`
	Manifest   ManifestDocument   `yaml:"manifest"`
	Workers    []WorkerDocument   `yaml:"workers" validate:"min=1,dive"`

	// Time units of background loading applied after the workers each tick
	BackgroundTime float64 `yaml:"background_time" validate:"gte=0"`

	Restocks []RestockDocument `yaml:"restocks" validate:"dive"`
}

// CatalogEntry registers an extra resource on top of the default catalog
type CatalogEntry struct {
	ID         string  `yaml:"id" validate:"required,resource_id"`
	Name       string  `yaml:"name" validate:"required,resource_name"`
	UnitMassKg float64 `yaml:"unit_mass_kg" validate:"gte=0"`
}

// SettlementDocument describes the resource source
type SettlementDocument struct {
	Name            string             `yaml:"name" validate:"required"`
	Amounts         map[string]float64 `yaml:"amounts" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	Items           map[string]int     `yaml:"items" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	Equipment       map[string]int     `yaml:"equipment" validate:"dive,keys,required,endkeys,gte=0"`
	EquipmentMassKg float64            `yaml:"equipment_mass_kg" validate:"gte=0"`
}

// VehicleDocument describes the cargo hold
type VehicleDocument struct {
	Name            string             `yaml:"name" validate:"required"`
	CargoCapacityKg float64            `yaml:"cargo_capacity_kg" validate:"gt=0"`
	AmountCapacity  map[string]float64 `yaml:"amount_capacity" validate:"dive,keys,resource_ref,endkeys,gte=0"`

	// Cargo already on board when loading begins
	Amounts map[string]float64 `yaml:"amounts" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	Items   map[string]int     `yaml:"items" validate:"dive,keys,resource_ref,endkeys,gte=0"`
}

// ManifestDocument lists the requested quantities
type ManifestDocument struct {
	MandatoryResources map[string]float64 `yaml:"mandatory_resources" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	OptionalResources  map[string]float64 `yaml:"optional_resources" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	MandatoryEquipment map[string]int     `yaml:"mandatory_equipment" validate:"dive,keys,required,endkeys,gte=0"`
	OptionalEquipment  map[string]int     `yaml:"optional_equipment" validate:"dive,keys,required,endkeys,gte=0"`
}

// WorkerDocument is one loading worker
type WorkerDocument struct {
	Name     string  `yaml:"name" validate:"required"`
	Strength float64 `yaml:"strength" validate:"gte=0,lte=100"`
}

// RestockDocument adds stock to the settlement before the given tick runs
type RestockDocument struct {
	Tick    int                `yaml:"tick" validate:"min=1"`
	Amounts map[string]float64 `yaml:"amounts" validate:"dive,keys,resource_ref,endkeys,gte=0"`
	Items   map[string]int     `yaml:"items" validate:"dive,keys,resource_ref,endkeys,gte=0"`
}

// Load reads and validates a scenario file
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := config.NewValidator().Validate(&doc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &doc, nil
}
