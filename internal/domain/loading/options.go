package loading

import "github.com/andrescamacho/supplyload-go/internal/domain/resource"

const (
	// DefaultLoadRate is the kg a worker moves per 12 time units at unit strength modifier
	DefaultLoadRate = 20.0

	// DefaultMaxRetryAttempts is the number of mandatory shortages a session tolerates
	DefaultMaxRetryAttempts = 5

	// DefaultHoldFullMargin is the free cargo mass below which an unfinished hold counts as full
	DefaultHoldFullMargin = 10.0

	// DefaultSmallestLoad is the mass at or below which a remaining quantity is negligible
	DefaultSmallestLoad = 0.01

	// DefaultBackgroundStrengthModifier is the strength modifier used when no worker is loading
	DefaultBackgroundStrengthModifier = 0.1

	baseStrengthModifier  = 0.1
	strengthModifierScale = 0.018
	loadTimeDivisor       = 12.0
	loadPrecision         = 1e6
)

// Options tunes a loading session. Zero fields take the defaults above.
type Options struct {
	LoadRate                   float64
	MaxRetryAttempts           int
	HoldFullMargin             float64
	SmallestLoad               float64
	BackgroundStrengthModifier float64

	// LifeSupport is the allow-list served by BackgroundLoad
	LifeSupport []resource.ResourceID

	// Catalog provides display names for logs and DumpContents
	Catalog *resource.Catalog

	Logger Logger
}

func (o Options) withDefaults() Options {
	if o.LoadRate <= 0 {
		o.LoadRate = DefaultLoadRate
	}
	if o.MaxRetryAttempts <= 0 {
		o.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if o.HoldFullMargin <= 0 {
		o.HoldFullMargin = DefaultHoldFullMargin
	}
	if o.SmallestLoad <= 0 {
		o.SmallestLoad = DefaultSmallestLoad
	}
	if o.BackgroundStrengthModifier <= 0 {
		o.BackgroundStrengthModifier = DefaultBackgroundStrengthModifier
	}
	if o.LifeSupport == nil && o.Catalog != nil {
		o.LifeSupport = o.Catalog.LifeSupport()
	}
	if len(o.LifeSupport) == 0 {
		o.LifeSupport = []resource.ResourceID{resource.Oxygen, resource.Water, resource.Food}
	}
	if o.Logger == nil {
		o.Logger = noOpLogger{}
	}
	return o
}
