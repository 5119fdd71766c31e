package charts

import "github.com/aretw0/tally/pkg/domain"

const labelOther = "other"

var leadStatuses = []string{
	domain.LeadNew,
	domain.LeadContacted,
	domain.LeadQualified,
	domain.LeadWon,
	domain.LeadLost,
}

// Status is a doughnut of leads per pipeline status. Unknown statuses are
// grouped under "other", which only appears when non-empty.
func Status(snap *domain.Snapshot, style domain.Style) domain.ChartConfig {
	counts := make(map[string]float64, len(leadStatuses))
	var other float64
	for _, l := range snap.Leads {
		if contains(leadStatuses, l.Status) {
			counts[l.Status]++
		} else {
			other++
		}
	}

	labels := append([]string(nil), leadStatuses...)
	data := make([]float64, 0, len(labels)+1)
	for _, s := range leadStatuses {
		data = append(data, counts[s])
	}
	if other > 0 {
		labels = append(labels, labelOther)
		data = append(data, other)
	}

	hues := style.Palette.Hues()
	fills := make([]string, len(labels))
	strokes := make([]string, len(labels))
	for i := range labels {
		h := hues[i%len(hues)]
		fills[i] = h.Fill
		strokes[i] = h.Stroke
	}

	return domain.ChartConfig{
		Slot:  domain.SlotStatus,
		Type:  domain.ChartDoughnut,
		Title: "Leads by status",
		Data: domain.ChartData{
			Labels: labels,
			Datasets: []domain.Dataset{{
				Label:           "Leads",
				Data:            data,
				BackgroundColor: fills,
				BorderColor:     strokes,
				BorderWidth:     1,
			}},
		},
		Options: baseOptions(style, false),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
