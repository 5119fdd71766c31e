// Package terminal draws the dashboard in a terminal and turns terminal
// resizes into viewport signals.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// DefaultWidth is used until the terminal size is known.
const DefaultWidth = 80

const (
	barRune     = "█"
	minBarWidth = 10
)

var errDestroyed = errors.New("terminal chart already destroyed")

// Renderer draws every live chart as horizontal bars. Create, Update and
// Destroy only mark the screen stale; Flush draws one frame for the whole
// batch.
type Renderer struct {
	out   *termenv.Output
	clear bool

	mu     sync.Mutex
	width  int
	live   map[domain.Slot]*instance
	dirty  bool
	frames int
}

var (
	_ ports.Renderer = (*Renderer)(nil)
	_ ports.Flusher  = (*Renderer)(nil)
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the initial drawing width.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithProfile forces a color profile instead of detecting it from the writer.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.out = termenv.NewOutput(r.out.Writer(), termenv.WithProfile(p))
	}
}

// WithClear clears the screen before each frame.
func WithClear(clear bool) Option {
	return func(r *Renderer) {
		r.clear = clear
	}
}

// NewRenderer creates a renderer drawing on w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:   termenv.NewOutput(w),
		width: DefaultWidth,
		live:  make(map[domain.Slot]*instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create draws cfg alongside the other live charts.
func (r *Renderer) Create(ctx context.Context, cfg domain.ChartConfig) (ports.Instance, error) {
	inst := &instance{slot: cfg.Slot, cfg: cfg, renderer: r}
	r.mu.Lock()
	r.live[cfg.Slot] = inst
	r.dirty = true
	r.mu.Unlock()
	return inst, nil
}

// SetWidth changes the drawing width. The next frame uses it; callers
// normally follow with a viewport signal so the charts are refreshed.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 {
		return
	}
	r.mu.Lock()
	if r.width != width {
		r.width = width
		r.dirty = true
	}
	r.mu.Unlock()
}

// Width returns the current drawing width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// Frame renders the live charts at the current width without drawing them.
func (r *Renderer) Frame() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameLocked()
}

// Frames returns how many frames Flush has drawn.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Flush draws one frame if anything changed since the last one.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil
	}
	frame := r.frameLocked()
	if r.clear {
		r.out.ClearScreen()
	}
	if _, err := r.out.WriteString(frame); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	r.dirty = false
	r.frames++
	return nil
}

func (r *Renderer) frameLocked() string {
	cfgs := make([]domain.ChartConfig, 0, len(r.live))
	for _, slot := range domain.Slots() {
		if inst, ok := r.live[slot]; ok {
			cfgs = append(cfgs, inst.cfg)
		}
	}
	return RenderFrame(r.out.Profile, cfgs, r.width)
}

// RenderFrame draws cfgs as labelled bar charts no wider than width.
func RenderFrame(p termenv.Profile, cfgs []domain.ChartConfig, width int) string {
	var b strings.Builder
	for i, cfg := range cfgs {
		if i > 0 {
			b.WriteString("\n")
		}
		renderChart(&b, p, cfg, width)
	}
	return b.String()
}

func renderChart(b *strings.Builder, p termenv.Profile, cfg domain.ChartConfig, width int) {
	title := p.String(cfg.Title).Bold()
	if c := toHex(cfg.Options.Legend.Color); c != "" {
		title = title.Foreground(p.Color(c))
	}
	fmt.Fprintf(b, "%s\n", title)

	labels := cfg.Data.Labels
	if len(labels) == 0 || len(cfg.Data.Datasets) == 0 {
		b.WriteString("  (no data)\n")
		return
	}

	values := make([]float64, len(labels))
	for _, ds := range cfg.Data.Datasets {
		for i := range labels {
			if i < len(ds.Data) {
				values[i] += ds.Data[i]
			}
		}
	}

	var peak float64
	labelWidth, valueWidth := 0, 0
	formatted := make([]string, len(values))
	for i, v := range values {
		peak = max(peak, v)
		formatted[i] = strconv.FormatFloat(v, 'f', -1, 64)
		labelWidth = max(labelWidth, utf8.RuneCountInString(labels[i]))
		valueWidth = max(valueWidth, len(formatted[i]))
	}

	barWidth := max(width-labelWidth-valueWidth-6, minBarWidth)
	colors := cfg.Data.Datasets[0].BorderColor

	for i, label := range labels {
		n := 0
		if peak > 0 {
			n = min(max(int(values[i]/peak*float64(barWidth)), 0), barWidth)
		}
		bar := p.String(strings.Repeat(barRune, n))
		if len(colors) > 0 {
			if c := toHex(colors[i%len(colors)]); c != "" {
				bar = bar.Foreground(p.Color(c))
			}
		}
		fmt.Fprintf(b, "  %-*s %s%s %*s\n",
			labelWidth, label,
			bar, strings.Repeat(" ", barWidth-n),
			valueWidth, formatted[i])
	}
}

// toHex accepts "#rrggbb" or "rgba(r, g, b, a)" and returns a hex color,
// or "" when s is neither.
func toHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if _, err := colorful.Hex(s); err != nil {
			return ""
		}
		return s
	}
	var r, g, bl uint8
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &bl, &a); err != nil {
		return ""
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(bl) / 255}.Hex()
}

type instance struct {
	slot     domain.Slot
	renderer *Renderer

	cfg       domain.ChartConfig
	destroyed bool
}

func (i *instance) Slot() domain.Slot { return i.slot }

func (i *instance) Config() domain.ChartConfig {
	i.renderer.mu.Lock()
	defer i.renderer.mu.Unlock()
	return i.cfg
}

func (i *instance) Update(cfg domain.ChartConfig) error {
	r := i.renderer
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.destroyed {
		return errDestroyed
	}
	i.cfg = cfg
	r.dirty = true
	return nil
}

func (i *instance) Destroy() error {
	r := i.renderer
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.destroyed {
		return errDestroyed
	}
	i.destroyed = true
	if r.live[i.slot] == i {
		delete(r.live, i.slot)
		r.dirty = true
	}
	return nil
}
