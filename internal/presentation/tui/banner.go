package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/tally/pkg/theme"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"  _        _ _       ",
	" | |_ __ _| | |_   _ ",
	" | __/ _` | | | | | |",
	" | || (_| | | | |_| |",
	"  \\__\\__,_|_|_|\\__, |",
	"               |___/ ",
}

// PrintBanner writes the tally banner, shaded from the palette's blue to
// its purple.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	from, _ := colorful.Hex(theme.HexBlue)
	to, _ := colorful.Hex(theme.HexPurple)

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		t := float64(i) / float64(len(bannerLines)-1)
		c := from.BlendLuv(to, t).Clamped()
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(c.Hex())))
	}
	fmt.Fprintln(w)
}
