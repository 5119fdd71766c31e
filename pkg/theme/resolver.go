package theme

import (
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Resolver turns the current style variables into a domain.Style.
type Resolver struct {
	source ports.StyleSource
}

// NewResolver creates a resolver over source.
func NewResolver(source ports.StyleSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve reads the style variables afresh. Unset variables resolve to "".
func (r *Resolver) Resolve() domain.Style {
	return domain.Style{
		Text:       r.lookup(domain.VarText),
		TextMuted:  r.lookup(domain.VarTextMuted),
		Border:     r.lookup(domain.VarBorder),
		Background: r.lookup(domain.VarBackground),
		Palette:    Palette(),
	}
}

func (r *Resolver) lookup(name string) string {
	if r.source == nil {
		return ""
	}
	v, _ := r.source.Lookup(name)
	return v
}
