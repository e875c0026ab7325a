package charts

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Theme selects the chart colours.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme reads a theme name; anything unknown is light.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Options size and style a chart.
type Options struct {
	Width  int
	Height int
	Theme  Theme
}

// Default chart size.
const (
	DefaultWidth  = 640
	DefaultHeight = 360
)

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Theme == "" {
		o.Theme = ThemeLight
	}
	return o
}

type palette struct {
	background drawing.Color
	text       drawing.Color
	grid       drawing.Color
	primary    drawing.Color
	secondary  drawing.Color
	accent     drawing.Color
}

var palettes = map[Theme]palette{
	ThemeLight: {
		background: chart.ColorWhite,
		text:       drawing.ColorFromHex("333333"),
		grid:       drawing.ColorFromHex("e5e5e5"),
		primary:    drawing.ColorFromHex("636efa"),
		secondary:  drawing.ColorFromHex("00cc96"),
		accent:     drawing.ColorFromHex("ef553b"),
	},
	ThemeDark: {
		background: drawing.ColorFromHex("111111"),
		text:       drawing.ColorFromHex("f2f5fa"),
		grid:       drawing.ColorFromHex("283442"),
		primary:    drawing.ColorFromHex("636efa"),
		secondary:  drawing.ColorFromHex("00cc96"),
		accent:     drawing.ColorFromHex("ef553b"),
	},
}

func (o Options) palette() palette {
	if p, ok := palettes[o.Theme]; ok {
		return p
	}
	return palettes[ThemeLight]
}

func (p palette) bgStyle() chart.Style {
	return chart.Style{
		FillColor: p.background,
		Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
	}
}

func (p palette) canvas() chart.Style {
	return chart.Style{FillColor: p.background}
}

func (p palette) title() chart.Style {
	return chart.Style{FontColor: p.text, FontSize: 13}
}

func (p palette) axis() chart.Style {
	return chart.Style{FontColor: p.text, StrokeColor: p.grid}
}

func (p palette) gridLine() chart.Style {
	return chart.Style{StrokeColor: p.grid, StrokeWidth: 1}
}

// sliceColors cycles through the pie slice colours.
var sliceColors = []drawing.Color{
	drawing.ColorFromHex("636efa"),
	drawing.ColorFromHex("ef553b"),
	drawing.ColorFromHex("00cc96"),
	drawing.ColorFromHex("ab63fa"),
	drawing.ColorFromHex("ffa15a"),
	drawing.ColorFromHex("19d3f3"),
	drawing.ColorFromHex("ff6692"),
	drawing.ColorFromHex("b6e880"),
}
