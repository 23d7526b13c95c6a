package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

// TreeFormatter renders supply chain items with their producing and consuming planets
type TreeFormatter struct{}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter() *TreeFormatter {
	return &TreeFormatter{}
}

// FormatItems renders one tree per material
func (f *TreeFormatter) FormatItems(items []*supplychain.Item) string {
	if len(items) == 0 {
		return "(no materials)\n"
	}

	var builder strings.Builder
	for _, item := range items {
		fmt.Fprintf(&builder, "%s %s [%s] net %+.1f/h", f.statusIcon(item), item.Name, item.TierName(), item.NetPerHour)
		if item.DepletionHours != nil {
			fmt.Fprintf(&builder, ", depletes in %s", formatDepletion(item.DepletionHours))
		}
		builder.WriteString("\n")

		branches := len(item.Producers) + len(item.Consumers)
		i := 0
		for _, p := range item.Producers {
			i++
			f.formatContributor(&builder, "+", p, i == branches)
		}
		for _, c := range item.Consumers {
			i++
			f.formatContributor(&builder, "-", c, i == branches)
		}
	}
	return builder.String()
}

func (f *TreeFormatter) formatContributor(builder *strings.Builder, sign string, c supplychain.Contributor, isLast bool) {
	linePrefix := "├── "
	if isLast {
		linePrefix = "└── "
	}
	planet := c.SolarSystemName
	if planet == "" {
		planet = fmt.Sprintf("planet %d", c.PlanetID)
	}
	fmt.Fprintf(builder, "%s%s%.1f/h  %s (%s) - %s\n", linePrefix, sign, c.RatePerHour, planet, c.PlanetType, c.CharacterName)
}

// statusIcon flags depleting materials and deficits
func (f *TreeFormatter) statusIcon(item *supplychain.Item) string {
	switch {
	case item.IsDepleting():
		return "✗"
	case item.NetPerHour < 0:
		return "!"
	default:
		return "✓"
	}
}
