package loading

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// loadEquipment moves empty equipment units one at a time. A unit that cannot
// be moved is logged and skipped. An unfilled kind with budget left over is
// only treated as source exhaustion when the source offered fewer units than
// needed: optional kinds are then abandoned and mandatory kinds count as a
// shortage. Kinds whose units were offered but failed to move stay outstanding.
func (c *Controller) loadEquipment(budget float64, manifest map[resource.EquipmentKind]int, mandatory bool, category Category, stats *Stats) float64 {
	for _, kind := range equipmentKinds(manifest) {
		if budget <= 0 {
			break
		}

		needed, ok := manifest[kind]
		if !ok {
			continue
		}

		requested, offered := needed, 0
		if needed > 0 {
			units := c.source.EmptyEquipmentOfKind(kind)
			offered = len(units)
			for _, unit := range units {
				if needed <= 0 || budget <= 0 {
					break
				}
				if err := c.transferEquipment(unit); err != nil {
					c.logTransferFailure(err)
					stats.TransferFailures++
					continue
				}
				needed--
				budget = roundLoad(budget - unit.Mass())
				stats.Loaded[category] += unit.Mass()
			}
		}

		switch {
		case needed <= 0:
			delete(manifest, kind)
		case offered >= requested:
			manifest[kind] = needed
		case budget > 0 && !mandatory:
			c.log("INFO", fmt.Sprintf("[Loading] No more %s available, dropping optional request", kind), map[string]interface{}{
				"equipment":   string(kind),
				"outstanding": needed,
			})
			stats.Abandoned++
			delete(manifest, kind)
		case budget > 0:
			manifest[kind] = needed
			c.state.recordShortage()
			stats.Shortages++
			c.log("WARN", fmt.Sprintf("[Loading] Not enough %s in settlement for %s", kind, c.hold.Name()), map[string]interface{}{
				"equipment":      string(kind),
				"outstanding":    needed,
				"retry_attempts": c.state.RetryAttempts(),
			})
		default:
			manifest[kind] = needed
		}
	}

	if budget < 0 {
		return 0
	}
	return budget
}

func (c *Controller) transferEquipment(unit EquipmentHandle) error {
	what := string(unit.Kind()) + " " + unit.ID()
	if err := c.source.WithdrawEquipment(unit); err != nil {
		return &TransferError{Vehicle: c.hold.Name(), What: what, Quantity: 1, Err: err}
	}
	if err := c.hold.DepositEquipment(unit); err != nil {
		if rollbackErr := c.source.StoreEquipment(unit); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rollbackErr))
		}
		return &TransferError{Vehicle: c.hold.Name(), What: what, Quantity: 1, Err: err}
	}
	return nil
}
