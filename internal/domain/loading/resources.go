package loading

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// loadResources sweeps one resource section. Ids are snapshotted before the
// sweep because entries are deleted while it runs.
func (c *Controller) loadResources(budget float64, manifest map[resource.ResourceID]float64, mandatory bool, category Category, stats *Stats) float64 {
	for _, id := range resourceIDs(manifest) {
		if budget <= 0 {
			break
		}
		if _, ok := manifest[id]; !ok {
			continue
		}
		budget = c.loadResource(budget, id, manifest, mandatory, category, stats)
	}
	return budget
}

func (c *Controller) loadResource(budget float64, id resource.ResourceID, manifest map[resource.ResourceID]float64, mandatory bool, category Category, stats *Stats) float64 {
	switch id.Kind() {
	case resource.KindItem:
		return c.loadItemResource(budget, id, manifest, mandatory, category, stats)
	default:
		return c.loadAmountResource(budget, id, manifest, mandatory, category, stats)
	}
}

// loadAmountResource moves up to budget kg of a bulk resource and returns the unspent budget
func (c *Controller) loadAmountResource(budget float64, id resource.ResourceID, manifest map[resource.ResourceID]float64, mandatory bool, category Category, stats *Stats) float64 {
	name := c.name(id)
	needed := manifest[id]
	toLoad := math.Min(needed, budget)
	usedSupply := false

	if stored := c.source.StoredAmount(id); stored < toLoad {
		if mandatory {
			c.state.recordShortage()
			stats.Shortages++
			c.log("WARN", fmt.Sprintf("[Loading] Not enough %s in settlement for %s", name, c.hold.Name()), map[string]interface{}{
				"resource":       name,
				"stored_kg":      stored,
				"needed_kg":      toLoad,
				"retry_attempts": c.state.RetryAttempts(),
			})
			toLoad = 0
		} else {
			toLoad = math.Max(stored, 0)
			usedSupply = true
		}
	}

	if room := c.hold.RemainingAmountCapacity(id); room < toLoad {
		if room <= c.opts.SmallestLoad {
			c.log("INFO", fmt.Sprintf("[Loading] No room left for %s, giving up on it", name), map[string]interface{}{
				"resource":       name,
				"outstanding_kg": needed,
				"remaining_room": room,
				"mandatory":      mandatory,
			})
			stats.Abandoned++
			needed = 0
			toLoad = 0
		} else {
			if mandatory && toLoad-room > c.opts.SmallestLoad {
				c.log("WARN", fmt.Sprintf("[Loading] Not enough room for %s, loading what fits", name), map[string]interface{}{
					"resource":  name,
					"wanted_kg": toLoad,
					"room_kg":   room,
					"shortfall": roundLoad(toLoad - room),
				})
			}
			toLoad = room
		}
	}

	toLoad = roundLoad(toLoad)
	if toLoad > 0 {
		if err := c.transferAmount(id, toLoad); err != nil {
			c.logTransferFailure(err)
			stats.TransferFailures++
			toLoad = 0
		} else {
			stats.Loaded[category] += toLoad
		}
	}

	needed = roundLoad(needed - toLoad)
	if c.negligible(id, needed) || usedSupply {
		delete(manifest, id)
	} else {
		manifest[id] = needed
	}

	return roundLoad(budget - toLoad)
}

// loadItemResource moves whole units of an item resource. At least one unit is
// attempted per call even when the budget is below one unit's mass.
func (c *Controller) loadItemResource(budget float64, id resource.ResourceID, manifest map[resource.ResourceID]float64, mandatory bool, category Category, stats *Stats) float64 {
	name := c.name(id)
	needed := int(math.Round(manifest[id]))
	unitMass := c.hold.MassPerUnit(id)

	couldLoad := needed
	if unitMass > 0 {
		couldLoad = max(1, unitsWithin(budget, unitMass, needed))
	}
	toLoad := min(needed, couldLoad)
	usedSupply := false

	if stored := c.source.StoredItemCount(id); stored < toLoad {
		if mandatory {
			c.state.recordShortage()
			stats.Shortages++
			c.log("WARN", fmt.Sprintf("[Loading] Not enough %s in settlement for %s", name, c.hold.Name()), map[string]interface{}{
				"resource":       name,
				"stored":         stored,
				"needed":         toLoad,
				"retry_attempts": c.state.RetryAttempts(),
			})
			toLoad = 0
		} else {
			toLoad = max(stored, 0)
			usedSupply = true
		}
	}

	if unitMass > 0 && toLoad > 0 {
		room := c.hold.RemainingCargoCapacity()
		if room < float64(toLoad)*unitMass {
			fits := unitsWithin(room, unitMass, toLoad)
			if fits <= 0 {
				c.log("INFO", fmt.Sprintf("[Loading] No room left for %s, giving up on it", name), map[string]interface{}{
					"resource":    name,
					"outstanding": needed,
					"room_kg":     room,
					"mandatory":   mandatory,
				})
				stats.Abandoned++
				needed = 0
				toLoad = 0
			} else {
				if mandatory {
					c.log("WARN", fmt.Sprintf("[Loading] Not enough room for %s, loading what fits", name), map[string]interface{}{
						"resource": name,
						"wanted":   toLoad,
						"fits":     fits,
					})
				}
				toLoad = fits
			}
		}
	}

	if toLoad > 0 {
		if err := c.transferItems(id, toLoad); err != nil {
			c.logTransferFailure(err)
			stats.TransferFailures++
			toLoad = 0
		} else {
			stats.Loaded[category] += float64(toLoad) * unitMass
		}
	}

	needed -= toLoad
	if needed <= 0 || usedSupply {
		delete(manifest, id)
	} else {
		manifest[id] = float64(needed)
	}

	return math.Max(0, roundLoad(budget-float64(toLoad)*unitMass))
}

// unitsWithin counts the whole units of unitMass that fit in kg, capped at
// limit before the int conversion
func unitsWithin(kg, unitMass float64, limit int) int {
	units := math.Floor(kg / unitMass)
	if units >= float64(limit) {
		return limit
	}
	if units <= 0 {
		return 0
	}
	return int(units)
}

// transferAmount withdraws from the source then deposits into the hold.
// A failed deposit returns the withdrawn stock so the transfer never half-happens.
func (c *Controller) transferAmount(id resource.ResourceID, quantity float64) error {
	if err := c.source.WithdrawAmount(id, quantity); err != nil {
		return &TransferError{Vehicle: c.hold.Name(), What: c.name(id), Quantity: quantity, Err: err}
	}
	if err := c.hold.DepositAmount(id, quantity); err != nil {
		if rollbackErr := c.source.StoreAmount(id, quantity); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rollbackErr))
		}
		return &TransferError{Vehicle: c.hold.Name(), What: c.name(id), Quantity: quantity, Err: err}
	}
	return nil
}

func (c *Controller) transferItems(id resource.ResourceID, quantity int) error {
	if err := c.source.WithdrawItems(id, quantity); err != nil {
		return &TransferError{Vehicle: c.hold.Name(), What: c.name(id), Quantity: float64(quantity), Err: err}
	}
	if err := c.hold.DepositItems(id, quantity); err != nil {
		if rollbackErr := c.source.StoreItems(id, quantity); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rollbackErr))
		}
		return &TransferError{Vehicle: c.hold.Name(), What: c.name(id), Quantity: float64(quantity), Err: err}
	}
	return nil
}

func (c *Controller) logTransferFailure(err error) {
	metadata := map[string]interface{}{"error": err.Error()}
	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		metadata["resource"] = transferErr.What
		metadata["quantity"] = transferErr.Quantity
	}
	c.log("ERROR", "[Loading] Transfer failed, skipping", metadata)
}
