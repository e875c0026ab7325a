// Package charts renders the dashboard's chart archetypes as SVG.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/pkg/metrics"
)

// Sentinel kinds for chart errors.
var (
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoData       = errors.New("no data to chart")
)

// Chart names.
const (
	Hourly     = "hourly"
	Cumulative = "cumulative"
	Daily      = "daily"
	Ranks      = "ranks"
	Newcomers  = "newcomers"
	Durations  = "durations"
	PowerDiff  = "powerdiff"
)

// Data is the aggregate input of every chart.
type Data struct {
	Hourly     []aggregate.HourCount
	Daily      []aggregate.DayCount
	Cumulative []aggregate.WinRatePoint
	Ranks      []aggregate.CategoryCount
	Newcomers  []aggregate.CategoryCount
	Durations  aggregate.Histogram
	PowerDiff  []aggregate.PowerDiffBin
}

type renderFunc func(w io.Writer, d Data, o Options) error

// titles are the display titles by chart name.
var titles = map[string]string{
	Hourly:     "每小时对局数",
	Cumulative: "累计胜率趋势",
	Daily:      "每日活跃玩家",
	Ranks:      "段位分布",
	Newcomers:  "新人类型分布",
	Durations:  "对局时长分布",
	PowerDiff:  "战力差 vs 胜率",
}

var catalog = map[string]renderFunc{
	Hourly:     renderHourly,
	Cumulative: renderCumulative,
	Daily:      renderDaily,
	Ranks:      renderRanks,
	Newcomers:  renderNewcomers,
	Durations:  renderDurations,
	PowerDiff:  renderPowerDiff,
}

// Names lists the known charts in ascending order.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for n := range catalog {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Title returns the display title of a chart.
func Title(name string) string {
	return titles[name]
}

// Render writes chart name as SVG.
func Render(w io.Writer, name string, d Data, o Options) error {
	render, ok := catalog[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return render(w, d, o.withDefaults())
}

// RenderOrPlaceholder writes chart name, or a placeholder when it has no
// data or fails to render. It reports whether the placeholder was used.
// Only an unknown name or a failing writer returns an error.
func RenderOrPlaceholder(w io.Writer, name string, d Data, o Options) (bool, error) {
	render, ok := catalog[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}

	var buf bytes.Buffer
	err := render(&buf, d, o.withDefaults())
	if err == nil {
		_, err = w.Write(buf.Bytes())
		return false, err
	}

	msg := "暂无数据"
	if !errors.Is(err, ErrNoData) {
		metrics.RecordChartFailure(name)
		msg = "图表生成失败"
	}
	return true, Placeholder(w, titles[name], msg, o)
}
