package loading

import (
	"fmt"
	"math"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// Category is one of the four manifest sections, plus the background path
type Category string

const (
	CategoryMandatoryEquipment Category = "mandatory_equipment"
	CategoryMandatoryResources Category = "mandatory_resources"
	CategoryOptionalResources  Category = "optional_resources"
	CategoryOptionalEquipment  Category = "optional_equipment"
	CategoryLifeSupport        Category = "life_support"
)

// Stats summarizes what one Load or BackgroundLoad call did
type Stats struct {
	Budget           float64
	Remaining        float64
	Loaded           map[Category]float64
	Shortages        int
	Abandoned        int
	TransferFailures int
}

func newStats(budget float64) Stats {
	return Stats{Budget: budget, Loaded: make(map[Category]float64)}
}

// TotalLoaded returns the kg moved across all categories
func (s Stats) TotalLoaded() float64 {
	total := 0.0
	for _, kg := range s.Loaded {
		total += kg
	}
	return total
}

// LoadResult is the outcome of one worker call
type LoadResult struct {
	Stats

	// Finished tells the worker to stop loading for now: either budget was
	// left unspent or the session has concluded
	Finished  bool
	Completed bool
	Failed    bool
	HoldFull  bool
}

// Controller runs one loading session of a cargo hold from a resource source.
//
// A controller is not safe for concurrent use; callers advance it from one
// goroutine (one call per worker per tick).
type Controller struct {
	source ResourceSource
	hold   CargoHold
	state  *State
	opts   Options

	finalized bool
}

// Begin starts a loading session. Quantities the hold already carries are
// subtracted from the request once, here, and requests larger than the
// hold's installed capacity are clamped.
func Begin(manifest *Manifest, source ResourceSource, hold CargoHold, opts Options) (*Controller, error) {
	if manifest == nil || source == nil || hold == nil {
		return nil, ErrNilCollaborator
	}

	opts = opts.withDefaults()
	c := &Controller{
		source:   source,
		hold:     hold,
		state:  NewState(manifest, opts.MaxRetryAttempts),
		opts:   opts,
	}
	c.reconcileResources()
	c.reconcileEquipment()
	return c, nil
}

// reconcileResources attributes stock already on board to mandatory entries
// first and lets optional entries use what is left over. Room still needed by
// the mandatory remainder is reserved before optional requests are clamped.
func (c *Controller) reconcileResources() {
	unattributed := make(map[resource.ResourceID]float64)
	pending := make(map[resource.ResourceID]float64)

	onBoard := func(id resource.ResourceID) float64 {
		if id.IsItem() {
			return float64(c.hold.StoredItemCount(id))
		}
		return c.hold.StoredAmount(id)
	}

	reconcile := func(manifest map[resource.ResourceID]float64, section string) {
		for _, id := range resourceIDs(manifest) {
			if _, seen := unattributed[id]; !seen {
				unattributed[id] = onBoard(id)
			}

			requested := manifest[id]
			used := math.Min(math.Max(unattributed[id], 0), requested)
			unattributed[id] -= used
			remaining := requested - used

			if !id.IsItem() {
				capacity := c.hold.AmountCapacity(id)
				room := capacity - c.hold.StoredAmount(id) - pending[id]
				if remaining > room {
					clamped := math.Max(0, room)
					c.log("WARN", fmt.Sprintf("[Loading] %s request for %s clamped to vehicle capacity", section, c.name(id)), map[string]interface{}{
						"resource":     c.name(id),
						"requested_kg": requested,
						"capacity_kg":  capacity,
						"clamped_kg":   roundLoad(clamped),
					})
					remaining = clamped
				}
			}

			remaining = roundLoad(remaining)
			pending[id] += remaining
			if c.negligible(id, remaining) {
				delete(manifest, id)
				continue
			}
			manifest[id] = remaining
		}
	}

	reconcile(c.state.mandatoryResources, "mandatory")
	reconcile(c.state.optionalResources, "optional")
}

func (c *Controller) reconcileEquipment() {
	attributed := make(map[resource.EquipmentKind]int)

	reconcile := func(manifest map[resource.EquipmentKind]int) {
		for _, kind := range equipmentKinds(manifest) {
			available := c.hold.EmptyContainerCount(kind) - attributed[kind]
			if available < 0 {
				available = 0
			}
			used := min(available, manifest[kind])
			attributed[kind] += used

			if remaining := manifest[kind] - used; remaining > 0 {
				manifest[kind] = remaining
			} else {
				delete(manifest, kind)
			}
		}
	}

	reconcile(c.state.mandatoryEquipment)
	reconcile(c.state.optionalEquipment)
}

// Load spends a worker's time on the session. The time is converted into a
// loadable mass which is drained across mandatory equipment, mandatory
// resources, optional resources and optional equipment in that order.
func (c *Controller) Load(worker Worker, time float64) (LoadResult, error) {
	if worker == nil {
		return LoadResult{}, ErrNilCollaborator
	}
	if time < 0 || math.IsNaN(time) {
		return LoadResult{}, ErrNegativeTime
	}

	strengthModifier := baseStrengthModifier + worker.NormalizedStrength()*strengthModifierScale
	budget := roundLoad(c.opts.LoadRate * strengthModifier * time / loadTimeDivisor)
	stats := newStats(budget)

	remaining := c.withDetachedHold(func() float64 {
		left := budget
		steps := []func(float64) float64{
			func(b float64) float64 {
				return c.loadEquipment(b, c.state.mandatoryEquipment, true, CategoryMandatoryEquipment, &stats)
			},
			func(b float64) float64 {
				return c.loadResources(b, c.state.mandatoryResources, true, CategoryMandatoryResources, &stats)
			},
			func(b float64) float64 {
				return c.loadResources(b, c.state.optionalResources, false, CategoryOptionalResources, &stats)
			},
			func(b float64) float64 {
				return c.loadEquipment(b, c.state.optionalEquipment, false, CategoryOptionalEquipment, &stats)
			},
		}
		for _, step := range steps {
			if left <= 0 {
				break
			}
			left = step(left)
		}
		return left
	})
	stats.Remaining = remaining

	if !c.state.IsCompleted() {
		if free := c.hold.RemainingCargoCapacity(); free < c.opts.HoldFullMargin {
			c.state.markHoldFull()
			c.log("INFO", fmt.Sprintf("[Loading] %s cargo hold is full, stopping", c.hold.Name()), map[string]interface{}{
				"free_kg": free,
			})
		}
	}

	completed := c.state.IsCompleted()
	if completed {
		c.finalize()
	}

	return LoadResult{
		Stats:     stats,
		Finished:  remaining > 0 || completed,
		Completed: completed,
		Failed:    c.state.IsFailure(),
		HoldFull:  c.state.HoldFull(),
	}, nil
}

// BackgroundLoad tops up the life-support allow-list without a worker.
// Only allow-listed ids present in the mandatory resource manifest are served,
// with mandatory shortage semantics. Draining the last outstanding entry
// finalizes the session the same way Load does.
func (c *Controller) BackgroundLoad(time float64) (Stats, error) {
	if time < 0 || math.IsNaN(time) {
		return Stats{}, ErrNegativeTime
	}

	budget := roundLoad(c.opts.LoadRate * c.opts.BackgroundStrengthModifier * time / loadTimeDivisor)
	stats := newStats(budget)
	if budget <= 0 {
		return stats, nil
	}

	stats.Remaining = c.withDetachedHold(func() float64 {
		left := budget
		for _, id := range c.opts.LifeSupport {
			if left <= 0 {
				break
			}
			if _, ok := c.state.mandatoryResources[id]; !ok {
				continue
			}
			left = c.loadResource(left, id, c.state.mandatoryResources, true, CategoryLifeSupport, &stats)
		}
		return left
	})

	if c.state.IsCompleted() {
		c.finalize()
	}
	return stats, nil
}

// withDetachedHold keeps the source's stock accounting from counting the
// hold's contents while fn moves cargo. Reattachment runs even if fn panics.
func (c *Controller) withDetachedHold(fn func() float64) float64 {
	if c.source.IsParkedHere(c.hold) {
		c.source.Detach(c.hold)
		defer c.source.Attach(c.hold)
	}
	return fn()
}

func (c *Controller) finalize() {
	c.hold.ClearAwaitingFuelFlag()
	c.hold.ClearLoadingStatus()

	if !c.finalized {
		c.finalized = true
		c.log("INFO", fmt.Sprintf("[Loading] %s loading completed", c.hold.Name()), map[string]interface{}{
			"hold_full":      c.state.HoldFull(),
			"retry_attempts": c.state.RetryAttempts(),
		})
	}
}

// Oracle

// IsCompleted reports whether the session has nothing left to do
func (c *Controller) IsCompleted() bool { return c.state.IsCompleted() }

// IsFailure reports whether mandatory shortages exhausted the retry budget
func (c *Controller) IsFailure() bool { return c.state.IsFailure() }

// Accessors

func (c *Controller) RetryAttempts() int { return c.state.RetryAttempts() }
func (c *Controller) IsHoldFull() bool   { return c.state.HoldFull() }

func (c *Controller) MandatoryResources() map[resource.ResourceID]float64 {
	return cloneResources(c.state.mandatoryResources)
}

func (c *Controller) OptionalResources() map[resource.ResourceID]float64 {
	return cloneResources(c.state.optionalResources)
}

func (c *Controller) MandatoryEquipment() map[resource.EquipmentKind]int {
	return cloneEquipment(c.state.mandatoryEquipment)
}

func (c *Controller) OptionalEquipment() map[resource.EquipmentKind]int {
	return cloneEquipment(c.state.optionalEquipment)
}

// helpers

func (c *Controller) name(id resource.ResourceID) string {
	return c.opts.Catalog.Name(id)
}

// negligible applies the entry removal threshold: masses at or below the
// smallest load, counts at or below zero
func (c *Controller) negligible(id resource.ResourceID, quantity float64) bool {
	if id.IsItem() {
		return quantity <= 0
	}
	return quantity <= c.opts.SmallestLoad
}

func (c *Controller) log(level, message string, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["vehicle"] = c.hold.Name()
	c.opts.Logger.Log(level, message, metadata)
}

// roundLoad rounds a mass to 1e-6 kg
func roundLoad(kg float64) float64 {
	return math.Round(kg*loadPrecision) / loadPrecision
}
