package charts

import "github.com/aretw0/tally/pkg/domain"

var projectStatuses = []string{
	domain.ProjectPlanned,
	domain.ProjectActive,
	domain.ProjectOnHold,
	domain.ProjectCompleted,
}

// Projects is a bar chart of projects per status, with the budget committed
// to each status as a second series.
func Projects(snap *domain.Snapshot, style domain.Style) domain.ChartConfig {
	counts := make([]float64, len(projectStatuses))
	budgets := make([]float64, len(projectStatuses))
	for _, p := range snap.Projects {
		for i, s := range projectStatuses {
			if p.Status == s {
				counts[i]++
				budgets[i] += p.Budget
				break
			}
		}
	}

	p := style.Palette
	return domain.ChartConfig{
		Slot:  domain.SlotProjects,
		Type:  domain.ChartBar,
		Title: "Projects",
		Data: domain.ChartData{
			Labels: append([]string(nil), projectStatuses...),
			Datasets: []domain.Dataset{
				{
					Label:           "Projects",
					Data:            counts,
					BackgroundColor: []string{p.Blue.Fill},
					BorderColor:     []string{p.Blue.Stroke},
					BorderWidth:     1,
				},
				{
					Label:           "Budget",
					Data:            budgets,
					BackgroundColor: []string{p.Purple.Fill},
					BorderColor:     []string{p.Purple.Stroke},
					BorderWidth:     1,
				},
			},
		},
		Options: baseOptions(style, true),
	}
}
