package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/supplyload-go/internal/application/loading"
	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// ProgressFormatter renders the outstanding requirements of a loading session
type ProgressFormatter struct {
	useColors bool
	useEmojis bool
	catalog   *resource.Catalog
}

// NewProgressFormatter creates a new progress formatter. catalog may be nil.
func NewProgressFormatter(useColors, useEmojis bool, catalog *resource.Catalog) *ProgressFormatter {
	return &ProgressFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
		catalog:   catalog,
	}
}

type progressGroup struct {
	title     string
	mandatory bool
	lines     []string
}

// FormatTree renders the snapshot as a tree of categories and their entries
func (f *ProgressFormatter) FormatTree(snapshot *loading.LoadingSnapshot) string {
	if snapshot == nil {
		return "(no active session)"
	}

	groups := []progressGroup{
		{title: "mandatory equipment", mandatory: true, lines: f.equipmentLines(snapshot.MandatoryEquipment)},
		{title: "mandatory resources", mandatory: true, lines: f.resourceLines(snapshot.MandatoryResources)},
		{title: "optional resources", lines: f.resourceLines(snapshot.OptionalResources)},
		{title: "optional equipment", lines: f.equipmentLines(snapshot.OptionalEquipment)},
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%s %s [%s]\n", f.statusIcon(snapshot.Completed), snapshot.Vehicle, snapshot.SessionID)

	for i, group := range groups {
		isLast := i == len(groups)-1
		linePrefix, childPrefix := "├── ", "│   "
		if isLast {
			linePrefix, childPrefix = "└── ", "    "
		}

		fmt.Fprintf(&builder, "%s%s %s%s%s\n",
			linePrefix,
			f.statusIcon(len(group.lines) == 0),
			f.categoryColor(group.mandatory),
			group.title,
			f.colorReset(),
		)

		for j, line := range group.lines {
			entryPrefix := childPrefix + "├── "
			if j == len(group.lines)-1 {
				entryPrefix = childPrefix + "└── "
			}
			builder.WriteString(entryPrefix + line + "\n")
		}
	}

	return builder.String()
}

// FormatSummary creates a compact single-line summary of the snapshot
func (f *ProgressFormatter) FormatSummary(snapshot *loading.LoadingSnapshot) string {
	if snapshot == nil {
		return "No active session"
	}

	outstanding := len(snapshot.MandatoryResources) + len(snapshot.OptionalResources) +
		len(snapshot.MandatoryEquipment) + len(snapshot.OptionalEquipment)

	holdFull := "no"
	if snapshot.HoldFull {
		holdFull = "yes"
	}

	return fmt.Sprintf(
		"%s: %d outstanding, retries=%d, hold full=%s, loaded=%.3f kg in %d ticks",
		snapshot.Vehicle, outstanding, snapshot.RetryAttempts, holdFull, snapshot.LoadedKg, snapshot.Ticks,
	)
}

func (f *ProgressFormatter) resourceLines(m map[resource.ResourceID]float64) []string {
	ids := make([]resource.ResourceID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return f.catalog.Name(ids[i]) < f.catalog.Name(ids[j]) })

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		if id.IsItem() {
			lines = append(lines, fmt.Sprintf("%s: %.0f units", f.catalog.Name(id), m[id]))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %.3f kg", f.catalog.Name(id), m[id]))
	}
	return lines
}

func (f *ProgressFormatter) equipmentLines(m map[resource.EquipmentKind]int) []string {
	kinds := make([]string, 0, len(m))
	for kind := range m {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	lines := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		lines = append(lines, fmt.Sprintf("%s: %d", kind, m[resource.EquipmentKind(kind)]))
	}
	return lines
}

// statusIcon returns a visual indicator for a satisfied or pending group
func (f *ProgressFormatter) statusIcon(done bool) string {
	if !f.useEmojis {
		if done {
			return "[✓]"
		}
		return "[ ]"
	}

	if done {
		return "✅"
	}
	return "⏳"
}

// categoryColor returns ANSI color code for a manifest category
func (f *ProgressFormatter) categoryColor(mandatory bool) string {
	if !f.useColors {
		return ""
	}
	if mandatory {
		return "\033[33m" // Yellow
	}
	return "\033[32m" // Green
}

// colorReset returns ANSI reset code
func (f *ProgressFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}
