// Package chart builds Chart.js configurations for the monthly proportion
// chart and the yearly grouped series, and manages their lifecycle per slot.
package chart

// Config mirrors the Chart.js configuration object.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
}

type Options struct {
	Responsive bool             `json:"responsive"`
	Color      string           `json:"color,omitempty"`
	Plugins    Plugins          `json:"plugins"`
	Scales     map[string]Scale `json:"scales,omitempty"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
}

type Legend struct {
	Position string      `json:"position,omitempty"`
	Labels   LegendLabel `json:"labels"`
}

type LegendLabel struct {
	Color string `json:"color,omitempty"`
}

type Scale struct {
	BeginAtZero bool  `json:"beginAtZero,omitempty"`
	Ticks       Ticks `json:"ticks"`
	Grid        Grid  `json:"grid"`
}

type Ticks struct {
	Color string `json:"color,omitempty"`
}

type Grid struct {
	Color string `json:"color,omitempty"`
}
