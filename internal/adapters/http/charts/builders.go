package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten so count axes
// end on a readable value.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func countRange(maxCount float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: niceCeil(maxCount * 1.05)}
}

func percentAxis(p palette, name string) chart.YAxis {
	return chart.YAxis{
		Name:           name,
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          &chart.ContinuousRange{Min: 0, Max: 100},
		ValueFormatter: percentFormatter,
		GridMajorStyle: p.gridLine(),
		Ticks: []chart.Tick{
			{Value: 0, Label: "0%"}, {Value: 25, Label: "25%"}, {Value: 50, Label: "50%"},
			{Value: 75, Label: "75%"}, {Value: 100, Label: "100%"},
		},
	}
}

func frame(title string, o Options) chart.Chart {
	p := o.palette()
	return chart.Chart{
		Title:      title,
		TitleStyle: p.title(),
		Width:      o.Width,
		Height:     o.Height,
		Background: p.bgStyle(),
		Canvas:     p.canvas(),
	}
}

func renderHourly(w io.Writer, d Data, o Options) error {
	if len(d.Hourly) == 0 {
		return ErrNoData
	}
	p := o.palette()
	xs := make([]float64, 0, len(d.Hourly))
	ys := make([]float64, 0, len(d.Hourly))
	top := 0.0
	for _, h := range d.Hourly {
		xs = append(xs, float64(h.Hour))
		ys = append(ys, float64(h.Matches))
		top = math.Max(top, float64(h.Matches))
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0])
		ys = append(ys, ys[0])
	}

	ticks := make([]chart.Tick, 0, 9)
	for h := 0; h <= 24; h += 3 {
		ticks = append(ticks, chart.Tick{Value: float64(h), Label: fmt.Sprintf("%02d:00", h%24)})
	}

	ch := frame(titles[Hourly], o)
	ch.XAxis = chart.XAxis{
		Name:      "小时",
		NameStyle: p.axis(),
		Style:     p.axis(),
		Range:     &chart.ContinuousRange{Min: 0, Max: 24},
		Ticks:     ticks,
	}
	ch.YAxis = chart.YAxis{
		Name:           "对局数",
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          countRange(top),
		ValueFormatter: countFormatter,
		GridMajorStyle: p.gridLine(),
	}
	ch.Series = []chart.Series{
		chart.ContinuousSeries{
			Name: "对局数",
			Style: chart.Style{
				StrokeColor: p.primary,
				StrokeWidth: 2,
				DotColor:    p.primary,
				DotWidth:    3,
			},
			XValues: xs,
			YValues: ys,
		},
	}
	return ch.Render(chart.SVG, w)
}

func renderCumulative(w io.Writer, d Data, o Options) error {
	if len(d.Cumulative) == 0 {
		return ErrNoData
	}
	p := o.palette()
	xs := make([]float64, 0, len(d.Cumulative)+1)
	ys := make([]float64, 0, len(d.Cumulative)+1)
	for _, pt := range d.Cumulative {
		xs = append(xs, float64(pt.Index))
		ys = append(ys, pt.WinRate)
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	first, last := xs[0], xs[len(xs)-1]

	ch := frame(titles[Cumulative], o)
	ch.XAxis = chart.XAxis{
		Name:           "对局序号",
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          &chart.ContinuousRange{Min: first, Max: last},
		ValueFormatter: countFormatter,
	}
	ch.YAxis = percentAxis(p, "累计胜率")
	ch.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "累计胜率",
			Style:   chart.Style{StrokeColor: p.primary, StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		},
		chart.ContinuousSeries{
			Name: "50% 参考线",
			Style: chart.Style{
				StrokeColor:     p.accent,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
			XValues: []float64{first, last},
			YValues: []float64{50, 50},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

// barChart lays out labelled bars, widening the canvas when the bars would
// not fit the requested width.
func barChart(title, yName string, labels []string, values []float64, o Options) chart.BarChart {
	p := o.palette()
	const barWidth, spacing = 28, 12

	bars := make([]chart.Value, 0, len(values))
	top := 0.0
	for i, v := range values {
		bars = append(bars, chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{FillColor: p.primary, StrokeColor: p.primary},
		})
		top = math.Max(top, v)
	}

	width := o.Width
	if need := len(bars)*(barWidth+spacing) + 120; need > width {
		width = need
	}
	return chart.BarChart{
		Title:      title,
		TitleStyle: p.title(),
		Width:      width,
		Height:     o.Height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: p.bgStyle(),
		Canvas:     p.canvas(),
		XAxis:      p.axis(),
		YAxis: chart.YAxis{
			Name:           yName,
			NameStyle:      p.axis(),
			Style:          p.axis(),
			Range:          countRange(top),
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}
}

func renderDaily(w io.Writer, d Data, o Options) error {
	if len(d.Daily) == 0 {
		return ErrNoData
	}
	labels := make([]string, 0, len(d.Daily))
	values := make([]float64, 0, len(d.Daily))
	for _, day := range d.Daily {
		label := day.Date
		if len(label) == len("2006-01-02") {
			label = label[5:]
		}
		labels = append(labels, label)
		values = append(values, float64(day.Players))
	}
	bc := barChart(titles[Daily], "玩家数", labels, values, o)
	return bc.Render(chart.SVG, w)
}

func renderRanks(w io.Writer, d Data, o Options) error {
	if len(d.Ranks) == 0 {
		return ErrNoData
	}
	labels := make([]string, 0, len(d.Ranks))
	values := make([]float64, 0, len(d.Ranks))
	for _, c := range d.Ranks {
		labels = append(labels, c.Name)
		values = append(values, float64(c.Count))
	}
	bc := barChart(titles[Ranks], "玩家数", labels, values, o)
	return bc.Render(chart.SVG, w)
}

func renderNewcomers(w io.Writer, d Data, o Options) error {
	total := 0
	for _, c := range d.Newcomers {
		total += c.Count
	}
	if total == 0 {
		return ErrNoData
	}
	p := o.palette()
	values := make([]chart.Value, 0, len(d.Newcomers))
	for i, c := range d.Newcomers {
		if c.Count == 0 {
			continue
		}
		color := sliceColors[i%len(sliceColors)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", c.Name, float64(c.Count)*100/float64(total)),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: color, StrokeColor: p.background, FontColor: p.text},
		})
	}
	pc := chart.PieChart{
		Title:      titles[Newcomers],
		TitleStyle: p.title(),
		Width:      o.Width,
		Height:     o.Height,
		Background: p.bgStyle(),
		Canvas:     p.canvas(),
		Values:     values,
	}
	return pc.Render(chart.SVG, w)
}

func renderDurations(w io.Writer, d Data, o Options) error {
	bins := d.Durations.Bins
	if len(bins) == 0 {
		return ErrNoData
	}
	p := o.palette()

	// Step outline: up and across each bin, back to zero at the end.
	xs := make([]float64, 0, 2*len(bins)+2)
	ys := make([]float64, 0, 2*len(bins)+2)
	xs = append(xs, bins[0].Lower)
	ys = append(ys, 0)
	top := 0.0
	for _, b := range bins {
		c := float64(b.Count)
		xs = append(xs, b.Lower, b.Upper)
		ys = append(ys, c, c)
		top = math.Max(top, c)
	}
	lo, hi := bins[0].Lower, bins[len(bins)-1].Upper
	xs = append(xs, hi)
	ys = append(ys, 0)
	yr := countRange(top)

	ch := frame(titles[Durations], o)
	ch.XAxis = chart.XAxis{
		Name:           "时长（秒）",
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		ValueFormatter: countFormatter,
	}
	ch.YAxis = chart.YAxis{
		Name:           "记录数",
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          yr,
		ValueFormatter: countFormatter,
		GridMajorStyle: p.gridLine(),
	}
	ch.Series = []chart.Series{
		chart.ContinuousSeries{
			Name: "记录数",
			Style: chart.Style{
				StrokeColor: p.primary,
				StrokeWidth: 1,
				FillColor:   p.primary.WithAlpha(120),
			},
			XValues: xs,
			YValues: ys,
		},
		chart.ContinuousSeries{
			Name: fmt.Sprintf("平均 %.0f 秒", d.Durations.Mean),
			Style: chart.Style{
				StrokeColor:     p.accent,
				StrokeWidth:     2,
				StrokeDashArray: []float64{4, 4},
			},
			XValues: []float64{d.Durations.Mean, d.Durations.Mean},
			YValues: []float64{0, yr.Max},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

func renderPowerDiff(w io.Writer, d Data, o Options) error {
	if len(d.PowerDiff) == 0 {
		return ErrNoData
	}
	p := o.palette()
	xs := make([]float64, 0, len(d.PowerDiff))
	rates := make([]float64, 0, len(d.PowerDiff))
	counts := make([]float64, 0, len(d.PowerDiff))
	top := 0.0
	for _, b := range d.PowerDiff {
		xs = append(xs, b.Lower/2+b.Upper/2)
		rates = append(rates, b.WinRate)
		counts = append(counts, float64(b.Count))
		top = math.Max(top, float64(b.Count))
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		rates = append(rates, rates[0])
		counts = append(counts, counts[0])
	}
	lo := d.PowerDiff[0].Lower
	hi := d.PowerDiff[len(d.PowerDiff)-1].Upper
	if hi <= lo {
		hi = lo + 1
	}

	ch := frame(titles[PowerDiff], o)
	ch.XAxis = chart.XAxis{
		Name:      "战力差",
		NameStyle: p.axis(),
		Style:     p.axis(),
		Range:     &chart.ContinuousRange{Min: lo, Max: hi},
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.0f", f)
			}
			return ""
		},
	}
	ch.YAxis = percentAxis(p, "胜率")
	ch.YAxisSecondary = chart.YAxis{
		Name:           "记录数",
		NameStyle:      p.axis(),
		Style:          p.axis(),
		Range:          countRange(top),
		ValueFormatter: countFormatter,
	}
	ch.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "记录数",
			YAxis:   chart.YAxisSecondary,
			Style:   chart.Style{StrokeColor: p.secondary, StrokeWidth: 1, FillColor: p.secondary.WithAlpha(90)},
			XValues: xs,
			YValues: counts,
		},
		chart.ContinuousSeries{
			Name: "胜率",
			Style: chart.Style{
				StrokeColor: p.primary,
				StrokeWidth: 2,
				DotColor:    p.primary,
				DotWidth:    4,
			},
			XValues: xs,
			YValues: rates,
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}
