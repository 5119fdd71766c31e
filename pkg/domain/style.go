package domain

// Style variable names read from the root style source.
const (
	VarText       = "--text-color"
	VarTextMuted  = "--text-muted"
	VarBorder     = "--border-color"
	VarBackground = "--card-bg"
)

// Hue is a palette color with a translucent fill and an opaque stroke.
type Hue struct {
	Name   string `json:"name"`
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
}

// Palette is the fixed set of named hues charts draw with.
type Palette struct {
	Blue   Hue `json:"blue"`
	Green  Hue `json:"green"`
	Amber  Hue `json:"amber"`
	Red    Hue `json:"red"`
	Purple Hue `json:"purple"`
}

// Hues returns the palette in a stable order.
func (p Palette) Hues() []Hue {
	return []Hue{p.Blue, p.Green, p.Amber, p.Red, p.Purple}
}

// Style is the resolved snapshot of theme colors for a single refresh cycle.
// Absent theme variables are empty strings.
type Style struct {
	Text       string  `json:"text"`
	TextMuted  string  `json:"text_muted"`
	Border     string  `json:"border"`
	Background string  `json:"background"`
	Palette    Palette `json:"palette"`
}
