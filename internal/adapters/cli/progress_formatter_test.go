package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/supplyload-go/internal/application/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
)

func sampleSnapshot() *loading.LoadingSnapshot {
	return &loading.LoadingSnapshot{
		SessionID: "load-rover-1-1a2b3c4d",
		Vehicle:   "Rover-1",
		MandatoryResources: map[resource.ResourceID]float64{
			resource.Water:  120,
			resource.Oxygen: 35.5,
		},
		OptionalResources: map[resource.ResourceID]float64{
			resource.WheelItem: 2,
		},
		MandatoryEquipment: map[resource.EquipmentKind]int{resource.EquipmentBarrel: 1},
		RetryAttempts:      3,
		Ticks:              7,
		LoadedKg:           84.25,
	}
}

func TestProgressFormatter_FormatTree(t *testing.T) {
	// Arrange
	f := NewProgressFormatter(false, false, resource.DefaultCatalog())

	// Act
	tree := f.FormatTree(sampleSnapshot())

	// Assert
	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	assert.Equal(t, "[ ] Rover-1 [load-rover-1-1a2b3c4d]", lines[0])
	assert.Equal(t, "├── [ ] mandatory equipment", lines[1])
	assert.Equal(t, "│   └── barrel: 1", lines[2])
	assert.Equal(t, "├── [ ] mandatory resources", lines[3])
	assert.Equal(t, "│   ├── oxygen: 35.500 kg", lines[4])
	assert.Equal(t, "│   └── water: 120.000 kg", lines[5])
	assert.Equal(t, "├── [ ] optional resources", lines[6])
	assert.Equal(t, "│   └── wheel: 2 units", lines[7])
	assert.Equal(t, "└── [✓] optional equipment", lines[8])
	assert.Len(t, lines, 9)
}

func TestProgressFormatter_FormatTreeWithColors(t *testing.T) {
	// Arrange
	f := NewProgressFormatter(true, true, resource.DefaultCatalog())

	// Act
	tree := f.FormatTree(sampleSnapshot())

	// Assert
	assert.Contains(t, tree, "⏳ \033[33mmandatory resources\033[0m")
	assert.Contains(t, tree, "✅ \033[32moptional equipment\033[0m")
}

func TestProgressFormatter_FormatSummary(t *testing.T) {
	// Arrange
	f := NewProgressFormatter(false, false, nil)

	// Act
	summary := f.FormatSummary(sampleSnapshot())

	// Assert
	assert.Equal(t, "Rover-1: 4 outstanding, retries=3, hold full=no, loaded=84.250 kg in 7 ticks", summary)
	assert.Equal(t, "No active session", f.FormatSummary(nil))
	assert.Equal(t, "(no active session)", f.FormatTree(nil))
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"with password", "postgres://loader:secret@db:5432/supplyload", "postgres://loader:xxxxx@db:5432/supplyload"},
		{"user only", "postgres://loader@db:5432/supplyload", "postgres://loader@db:5432/supplyload"},
		{"no credentials", "postgres://db:5432/supplyload", "postgres://db:5432/supplyload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskPassword(tt.raw))
		})
	}
}

func TestPrintConfig(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Database.Type = "postgres"
	cfg.Database.URL = "postgres://loader:secret@db:5432/supplyload"
	var out bytes.Buffer

	// Act
	printConfig(&out, cfg)

	// Assert
	assert.Contains(t, out.String(), "Load Rate:        20 kg per 12 time units")
	assert.Contains(t, out.String(), "Life Support:     oxygen, water, food")
	assert.Contains(t, out.String(), "postgres://loader:xxxxx@db:5432/supplyload")
	assert.NotContains(t, out.String(), "secret")
}
