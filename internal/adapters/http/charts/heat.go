package charts

import (
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// viridis stops, low to high.
var viridis = []drawing.Color{
	drawing.ColorFromHex("440154"),
	drawing.ColorFromHex("3b528b"),
	drawing.ColorFromHex("21918c"),
	drawing.ColorFromHex("5ec962"),
	drawing.ColorFromHex("fde725"),
}

// HeatColor maps count on [0, top] to a CSS colour on the viridis scale.
func HeatColor(count, top int) string {
	return heat(count, top).String()
}

// HeatTextColor is a readable text colour over HeatColor(count, top).
func HeatTextColor(count, top int) string {
	c := heat(count, top)
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if luma > 140 {
		return drawing.ColorBlack.String()
	}
	return drawing.ColorWhite.String()
}

func heat(count, top int) drawing.Color {
	if top <= 0 || count <= 0 {
		return viridis[0]
	}
	if count >= top {
		return viridis[len(viridis)-1]
	}
	pos := float64(count) / float64(top) * float64(len(viridis)-1)
	i := int(pos)
	return lerp(viridis[i], viridis[i+1], pos-float64(i))
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
