package theme

import (
	"fmt"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/lucasb-eyer/go-colorful"
)

// FillAlpha is the opacity of a hue's fill variant.
const FillAlpha = 0.2

// Base colors of the palette hues.
const (
	HexBlue   = "#3b82f6"
	HexGreen  = "#22c55e"
	HexAmber  = "#f59e0b"
	HexRed    = "#ef4444"
	HexPurple = "#8b5cf6"
)

var palette = domain.Palette{
	Blue:   mustHue("blue", HexBlue),
	Green:  mustHue("green", HexGreen),
	Amber:  mustHue("amber", HexAmber),
	Red:    mustHue("red", HexRed),
	Purple: mustHue("purple", HexPurple),
}

// Palette returns the static chart palette.
func Palette() domain.Palette {
	return palette
}

// NewHue derives the fill and stroke variants of a hex color.
func NewHue(name, hex string) (domain.Hue, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return domain.Hue{}, fmt.Errorf("hue %s: %w", name, err)
	}
	r, g, b := c.RGB255()
	return domain.Hue{
		Name:   name,
		Fill:   fmt.Sprintf("rgba(%d, %d, %d, %.1f)", r, g, b, FillAlpha),
		Stroke: fmt.Sprintf("rgba(%d, %d, %d, 1)", r, g, b),
	}, nil
}

func mustHue(name, hex string) domain.Hue {
	h, err := NewHue(name, hex)
	if err != nil {
		panic(err)
	}
	return h
}
