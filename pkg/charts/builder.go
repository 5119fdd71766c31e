// Package charts maps a record snapshot and a style descriptor to chart
// configurations. Builders are pure: they share no state and tolerate nil
// or empty snapshots by producing an empty chart.
package charts

import (
	"fmt"

	"github.com/aretw0/tally/pkg/domain"
)

// Builder produces the configuration of one chart slot.
type Builder func(snap *domain.Snapshot, style domain.Style) domain.ChartConfig

var builders = map[domain.Slot]Builder{
	domain.SlotStatus:   Status,
	domain.SlotProjects: Projects,
	domain.SlotRevenue:  Revenue,
}

// For returns the builder of slot.
func For(slot domain.Slot) (Builder, error) {
	b, ok := builders[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoBuilder, slot)
	}
	return b, nil
}

// Build runs the builder of slot.
func Build(slot domain.Slot, snap *domain.Snapshot, style domain.Style) (domain.ChartConfig, error) {
	b, err := For(slot)
	if err != nil {
		return domain.ChartConfig{}, err
	}
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	return b(snap, style), nil
}

// baseOptions are the theme-dependent settings every chart shares.
func baseOptions(style domain.Style, withScales bool) domain.ChartOptions {
	opts := domain.ChartOptions{
		Responsive:          true,
		MaintainAspectRatio: false,
		Legend: domain.LegendOptions{
			Display: true,
			Color:   style.Text,
		},
		Background: style.Background,
	}
	if withScales {
		opts.Scales = map[string]domain.Scale{
			"x": {TickColor: style.TextMuted, GridColor: style.Border},
			"y": {TickColor: style.TextMuted, GridColor: style.Border, BeginAtZero: true},
		}
	}
	return opts
}
