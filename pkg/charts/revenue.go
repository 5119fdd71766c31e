package charts

import (
	"sort"

	"github.com/aretw0/tally/pkg/domain"
)

// RevenueMonths is the number of most recent months the revenue chart shows.
const RevenueMonths = 12

const monthLayout = "2006-01"

// Revenue is a line of paid amounts per calendar month (UTC), oldest first,
// limited to the RevenueMonths most recent months present in the data.
// Pending payments are drawn as a second series.
func Revenue(snap *domain.Snapshot, style domain.Style) domain.ChartConfig {
	paid := make(map[string]float64)
	pending := make(map[string]float64)
	for _, pay := range snap.Payments {
		if pay.PaidAt.IsZero() {
			continue
		}
		month := pay.PaidAt.UTC().Format(monthLayout)
		switch pay.Status {
		case domain.PaymentPaid:
			paid[month] += pay.Amount
		case domain.PaymentPending:
			pending[month] += pay.Amount
		}
	}

	seen := make(map[string]struct{}, len(paid)+len(pending))
	for m := range paid {
		seen[m] = struct{}{}
	}
	for m := range pending {
		seen[m] = struct{}{}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > RevenueMonths {
		months = months[len(months)-RevenueMonths:]
	}

	paidSeries := make([]float64, len(months))
	pendingSeries := make([]float64, len(months))
	for i, m := range months {
		paidSeries[i] = paid[m]
		pendingSeries[i] = pending[m]
	}

	p := style.Palette
	return domain.ChartConfig{
		Slot:  domain.SlotRevenue,
		Type:  domain.ChartLine,
		Title: "Revenue",
		Data: domain.ChartData{
			Labels: months,
			Datasets: []domain.Dataset{
				{
					Label:           "Paid",
					Data:            paidSeries,
					BackgroundColor: []string{p.Green.Fill},
					BorderColor:     []string{p.Green.Stroke},
					BorderWidth:     2,
					Fill:            true,
					Tension:         0.3,
				},
				{
					Label:           "Pending",
					Data:            pendingSeries,
					BackgroundColor: []string{p.Amber.Fill},
					BorderColor:     []string{p.Amber.Stroke},
					BorderWidth:     2,
					Tension:         0.3,
				},
			},
		},
		Options: baseOptions(style, true),
	}
}
