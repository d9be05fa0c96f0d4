package loading

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// DumpContents renders the outstanding requirements for diagnostics
func (c *Controller) DumpContents() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Loading %s: retries left %d, hold full %t, completed %t\n",
		c.hold.Name(), c.state.RetryAttempts(), c.state.HoldFull(), c.state.IsCompleted())

	sections := []struct {
		title string
		lines []string
	}{
		{"Mandatory equipment", c.equipmentLines(c.state.mandatoryEquipment)},
		{"Mandatory resources", c.resourceLines(c.state.mandatoryResources)},
		{"Optional resources", c.resourceLines(c.state.optionalResources)},
		{"Optional equipment", c.equipmentLines(c.state.optionalEquipment)},
	}

	for _, section := range sections {
		if len(section.lines) == 0 {
			fmt.Fprintf(&b, "  %s: none\n", section.title)
			continue
		}
		fmt.Fprintf(&b, "  %s:\n", section.title)
		for _, line := range section.lines {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func (c *Controller) resourceLines(m map[resource.ResourceID]float64) []string {
	lines := make([]string, 0, len(m))
	for _, id := range resourceIDs(m) {
		if id.IsItem() {
			lines = append(lines, fmt.Sprintf("%-20s %10.0f units", c.name(id), m[id]))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-20s %10.3f kg", c.name(id), m[id]))
	}
	return lines
}

func (c *Controller) equipmentLines(m map[resource.EquipmentKind]int) []string {
	lines := make([]string, 0, len(m))
	for _, kind := range equipmentKinds(m) {
		lines = append(lines, fmt.Sprintf("%-20s %10d units", kind, m[kind]))
	}
	return lines
}
