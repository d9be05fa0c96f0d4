package config

import (
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// LoadingConfig holds the tuning constants of loading sessions
type LoadingConfig struct {
	// kg moved per 12 time units by a worker with strength modifier 1.0
	LoadRate float64 `mapstructure:"load_rate" validate:"gt=0"`

	// Mandatory shortages tolerated before a session fails
	MaxRetryAttempts int `mapstructure:"max_retry_attempts" validate:"min=1"`

	// Free cargo mass (kg) below which the hold counts as full
	HoldFullMarginKg float64 `mapstructure:"hold_full_margin_kg" validate:"gte=0"`

	// Remaining mass (kg) at or below which an entry is negligible
	SmallestLoadKg float64 `mapstructure:"smallest_load_kg" validate:"gt=0"`

	// Strength modifier applied by background loading
	BackgroundStrengthModifier float64 `mapstructure:"background_strength_modifier" validate:"gt=0"`

	// Names or ids of resources served by background loading
	LifeSupport []string `mapstructure:"life_support" validate:"dive,resource_ref"`
}

// Options converts the configuration into controller options.
// LifeSupport names are resolved against catalog.
func (c LoadingConfig) Options(catalog *resource.Catalog) (loading.Options, error) {
	lifeSupport := make([]resource.ResourceID, 0, len(c.LifeSupport))
	for _, name := range c.LifeSupport {
		id, err := catalog.Resolve(name)
		if err != nil {
			return loading.Options{}, fmt.Errorf("loading.life_support: %w", err)
		}
		lifeSupport = append(lifeSupport, id)
	}

	return loading.Options{
		LoadRate:                   c.LoadRate,
		MaxRetryAttempts:           c.MaxRetryAttempts,
		HoldFullMargin:             c.HoldFullMarginKg,
		SmallestLoad:               c.SmallestLoadKg,
		BackgroundStrengthModifier: c.BackgroundStrengthModifier,
		LifeSupport:                lifeSupport,
		Catalog:                    catalog,
	}, nil
}
