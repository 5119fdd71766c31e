package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/dustin/go-humanize"
)

// Report renders the dashboard as markdown: one table per chart, as the
// charts currently show it, plus headline figures from the records.
func Report(charts map[domain.Slot]domain.ChartConfig, snap *domain.Snapshot, now time.Time) string {
	if snap == nil {
		snap = &domain.Snapshot{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tally report\n\n")
	fmt.Fprintf(&b, "_Generated %s._\n\n", now.Format("2006-01-02 15:04"))

	var paid, pending float64
	var last time.Time
	for _, p := range snap.Payments {
		switch p.Status {
		case domain.PaymentPaid:
			paid += p.Amount
			if p.PaidAt.After(last) {
				last = p.PaidAt
			}
		case domain.PaymentPending:
			pending += p.Amount
		}
	}

	fmt.Fprintf(&b, "- **Leads:** %s\n", humanize.Comma(int64(len(snap.Leads))))
	fmt.Fprintf(&b, "- **Projects:** %s\n", humanize.Comma(int64(len(snap.Projects))))
	fmt.Fprintf(&b, "- **Revenue received:** %s\n", money(paid))
	fmt.Fprintf(&b, "- **Revenue pending:** %s\n", money(pending))
	if !last.IsZero() {
		fmt.Fprintf(&b, "- **Last payment:** %s\n", humanize.RelTime(last, now, "ago", "from now"))
	}
	b.WriteString("\n")

	for _, slot := range domain.Slots() {
		cfg, ok := charts[slot]
		if !ok {
			fmt.Fprintf(&b, "## %s\n\n_Chart unavailable._\n\n", slot)
			continue
		}
		writeTable(&b, cfg)
	}
	return b.String()
}

func writeTable(b *strings.Builder, cfg domain.ChartConfig) {
	fmt.Fprintf(b, "## %s\n\n", cfg.Title)
	if len(cfg.Data.Labels) == 0 {
		b.WriteString("_No data yet._\n\n")
		return
	}

	b.WriteString("| |")
	for _, ds := range cfg.Data.Datasets {
		fmt.Fprintf(b, " %s |", ds.Label)
	}
	b.WriteString("\n|---|")
	for range cfg.Data.Datasets {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for i, label := range cfg.Data.Labels {
		fmt.Fprintf(b, "| %s |", label)
		for _, ds := range cfg.Data.Datasets {
			var v float64
			if i < len(ds.Data) {
				v = ds.Data[i]
			}
			fmt.Fprintf(b, " %s |", humanize.Commaf(v))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}
