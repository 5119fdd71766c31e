package theme

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// AttrTheme is the root attribute that selects the active theme.
const AttrTheme = "data-theme"

// Vars is one theme's set of style variables.
type Vars map[string]string

// Builtin returns the light and dark themes shipped with the dashboard.
func Builtin() map[string]Vars {
	return map[string]Vars{
		"light": {
			domain.VarText:       "#1f2937",
			domain.VarTextMuted:  "#6b7280",
			domain.VarBorder:     "#e5e7eb",
			domain.VarBackground: "#ffffff",
		},
		"dark": {
			domain.VarText:       "#f3f4f6",
			domain.VarTextMuted:  "#9ca3af",
			domain.VarBorder:     "#374151",
			domain.VarBackground: "#1f2937",
		},
	}
}

// Observer is notified when a root attribute changes.
type Observer func(attr, oldValue, newValue string)

// Root is the style-carrying root node.
type Root struct {
	mu        sync.RWMutex
	themes    map[string]Vars
	attrs     map[string]string
	nextID    int
	observers map[int]Observer
}

var _ ports.StyleSource = (*Root)(nil)

// NewRoot creates a root holding themes with active selected.
func NewRoot(themes map[string]Vars, active string) (*Root, error) {
	if len(themes) == 0 {
		themes = Builtin()
	}
	if _, ok := themes[active]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTheme, active)
	}
	return &Root{
		themes:    cloneThemes(themes),
		attrs:     map[string]string{AttrTheme: active},
		observers: make(map[int]Observer),
	}, nil
}

// Lookup reads a variable from the active theme.
func (r *Root) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vars, ok := r.themes[r.attrs[AttrTheme]]
	if !ok {
		return "", false
	}
	v, ok := vars[name]
	return v, ok
}

// Active returns the active theme name.
func (r *Root) Active() string {
	return r.Attribute(AttrTheme)
}

// Themes returns the known theme names, sorted.
func (r *Root) Themes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.themes))
}

// Attribute returns the value of a root attribute.
func (r *Root) Attribute(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.attrs[name]
}

// SetTheme switches the active theme.
func (r *Root) SetTheme(name string) error {
	r.mu.RLock()
	_, ok := r.themes[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTheme, name)
	}
	r.SetAttribute(AttrTheme, name)
	return nil
}

// SetAttribute sets a root attribute and notifies observers when it changes.
func (r *Root) SetAttribute(name, value string) {
	r.mu.Lock()
	old := r.attrs[name]
	if old == value {
		r.mu.Unlock()
		return
	}
	r.attrs[name] = value
	observers := r.snapshotObservers()
	r.mu.Unlock()

	for _, obs := range observers {
		obs(name, old, value)
	}
}

// ReplaceThemes swaps the variable sets, e.g. after a theme file reload.
// Observers are notified as a change of the active theme attribute.
// If the active theme vanished, the first theme in name order becomes active.
func (r *Root) ReplaceThemes(themes map[string]Vars) {
	if len(themes) == 0 {
		return
	}
	r.mu.Lock()
	r.themes = cloneThemes(themes)
	active := r.attrs[AttrTheme]
	if _, ok := r.themes[active]; !ok {
		r.attrs[AttrTheme] = slices.Sorted(maps.Keys(r.themes))[0]
	}
	current := r.attrs[AttrTheme]
	observers := r.snapshotObservers()
	r.mu.Unlock()

	for _, obs := range observers {
		obs(AttrTheme, active, current)
	}
}

// Observe registers obs and returns the function that unregisters it.
func (r *Root) Observe(obs Observer) (dispose func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.observers[id] = obs

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.observers, id)
		})
	}
}

func (r *Root) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(r.observers))
	for _, obs := range r.observers {
		out = append(out, obs)
	}
	return out
}

func cloneThemes(in map[string]Vars) map[string]Vars {
	out := make(map[string]Vars, len(in))
	for name, vars := range in {
		out[name] = maps.Clone(vars)
	}
	return out
}
