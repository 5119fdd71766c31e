/*
Package domain contains the core models of the Tally dashboard.

It defines the chart slots, the business records that feed them, the style
descriptor derived from the active theme, the renderable chart configuration
and the trigger signals that cause a refresh. The package is free of I/O and
persistence concerns.

# Key Entities

  - Slot: a fixed chart position (status, projects, revenue) holding at most one live chart.
  - Snapshot: the leads, projects and payments a refresh reads from.
  - Style: text, muted, border and background colors plus a static palette of hues.
  - ChartConfig: the renderable configuration a builder produces for a slot.
  - Trigger: a named signal (data change, viewport resize, theme change).
*/
package domain
