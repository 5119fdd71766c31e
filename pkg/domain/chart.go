package domain

// ChartType names the visual form of a chart.
type ChartType string

const (
	ChartDoughnut ChartType = "doughnut"
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
)

// ChartConfig is the renderable description of one chart.
// Its JSON shape follows the common browser charting convention
// (type, data.labels, data.datasets, options).
type ChartConfig struct {
	Slot    Slot         `json:"slot"`
	Type    ChartType    `json:"type"`
	Title   string       `json:"title"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

// ChartData holds the category labels and the series drawn over them.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     []string  `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// ChartOptions carries the theme-dependent presentation settings.
type ChartOptions struct {
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Legend              LegendOptions    `json:"legend"`
	Scales              map[string]Scale `json:"scales,omitempty"`
	Background          string           `json:"background,omitempty"`
}

// LegendOptions styles the chart legend.
type LegendOptions struct {
	Display bool   `json:"display"`
	Color   string `json:"color"`
}

// Scale styles one axis.
type Scale struct {
	TickColor   string `json:"tickColor"`
	GridColor   string `json:"gridColor"`
	BeginAtZero bool   `json:"beginAtZero,omitempty"`
}

// Total sums every value of every dataset.
func (c ChartConfig) Total() float64 {
	var sum float64
	for _, ds := range c.Data.Datasets {
		for _, v := range ds.Data {
			sum += v
		}
	}
	return sum
}
