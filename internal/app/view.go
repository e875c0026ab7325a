package service

import (
	"context"
	"time"

	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/okian/devilmatch/pkg/metrics"
)

// maxCumulativePoints bounds the cumulative win-rate series sent to views.
const maxCumulativePoints = 2000

// Request is one page interaction.
type Request struct {
	Query filter.Query
}

// Trends holds the 趋势分析 section.
type Trends struct {
	Hourly     []aggregate.HourCount    `json:"hourly"`
	Daily      []aggregate.DayCount     `json:"daily"`
	Cumulative []aggregate.WinRatePoint `json:"cumulative"`
}

// Players holds the 玩家分析 section.
type Players struct {
	Ranks     []aggregate.CategoryCount `json:"ranks"`
	Newcomers []aggregate.CategoryCount `json:"newcomers"`
	Heatmap   aggregate.Heatmap         `json:"heatmap"`
}

// Matches holds the 对局分析 section.
type Matches struct {
	Durations aggregate.Histogram      `json:"durations"`
	PowerDiff []aggregate.PowerDiffBin `json:"power_diff"`
	Comeback  aggregate.ComebackStats  `json:"comeback"`
}

// Detail holds the 详细数据 section: the filtered rows and their summary.
type Detail struct {
	Summary   aggregate.Summary `json:"summary"`
	Header    []string          `json:"header"`
	Rows      [][]string        `json:"rows"`
	Total     int               `json:"total"`
	Truncated bool              `json:"truncated"`
}

// ViewModel is everything the dashboard page shows for one request.
type ViewModel struct {
	Notice     *Notice      `json:"notice,omitempty"`
	Source     string       `json:"source"`
	LoadedAt   time.Time    `json:"loaded_at"`
	RenderedAt time.Time    `json:"rendered_at"`
	Demo       bool         `json:"demo"`
	Schema     model.Schema `json:"schema"`
	Query      filter.Query `json:"query"`

	// DateMin and DateMax bound the date selector; empty without data.
	DateMin string `json:"date_min"`
	DateMax string `json:"date_max"`

	// TotalPlayers counts players across the whole dataset, ignoring scope.
	TotalPlayers int `json:"total_players"`

	Summary     aggregate.Summary `json:"summary"`
	Trends      Trends            `json:"trends"`
	Players     Players           `json:"players"`
	Matches     Matches           `json:"matches"`
	RankOptions []string          `json:"rank_options"`
	Detail      Detail            `json:"detail"`
}

// Empty reports whether the scoped page has no rows.
func (v *ViewModel) Empty() bool { return v.Summary.Rows == 0 }

// Render builds the view model for req from the cached dataset. It is pure
// apart from reading the cache.
func (s *Service) Render(ctx context.Context, req Request) (*ViewModel, error) {
	start := time.Now()
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	ds := snap.Dataset
	scoped := filter.Scope(ds, req.Query.Scope)
	detail := filter.Apply(scoped, req.Query.Filter)

	vm := &ViewModel{
		Notice:       snap.Notice,
		Source:       snap.File.Name,
		LoadedAt:     snap.LoadedAt,
		RenderedAt:   s.now(),
		Demo:         snap.Demo,
		Schema:       ds.Schema,
		Query:        req.Query,
		TotalPlayers: aggregate.Summarize(ds).Players,
		Summary:      aggregate.Summarize(scoped),
		Trends: Trends{
			Hourly:     aggregate.HourlyMatchCounts(scoped),
			Daily:      aggregate.DailyActivePlayers(scoped),
			Cumulative: downsample(aggregate.CumulativeWinRate(scoped), maxCumulativePoints),
		},
		Players: Players{
			Ranks:     aggregate.RankDistribution(scoped),
			Newcomers: aggregate.NewcomerDistribution(scoped),
			Heatmap:   aggregate.KDARankHeatmap(scoped, req.Query.Heatmap),
		},
		Matches: Matches{
			Durations: aggregate.DurationHistogram(scoped, aggregate.DefaultDurationBins),
			PowerDiff: aggregate.WinRateByPowerDiff(scoped),
			Comeback:  aggregate.Comebacks(scoped),
		},
		RankOptions: aggregate.Ranks(ds),
		Detail:      s.detail(detail),
	}
	vm.DateMin, vm.DateMax, _ = filter.DateBounds(ds)

	metrics.RecordRenderDuration("page", float64(time.Since(start).Milliseconds()))
	return vm, nil
}

// Series names one chart input.
type Series string

// Chart inputs.
const (
	SeriesHourly     Series = "hourly"
	SeriesDaily      Series = "daily"
	SeriesCumulative Series = "cumulative"
	SeriesRanks      Series = "ranks"
	SeriesNewcomers  Series = "newcomers"
	SeriesDurations  Series = "durations"
	SeriesPowerDiff  Series = "powerdiff"
)

// ChartSeries holds the sections a chart draws from. Only the requested
// series is filled in.
type ChartSeries struct {
	Trends  Trends
	Players Players
	Matches Matches
}

// Series computes a single chart input for scope, skipping the rest of the
// page. An unknown series yields an empty result.
func (s *Service) Series(ctx context.Context, scope filter.DateScope, which Series) (*ChartSeries, error) {
	start := time.Now()
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	scoped := filter.Scope(snap.Dataset, scope)
	out := &ChartSeries{}
	switch which {
	case SeriesHourly:
		out.Trends.Hourly = aggregate.HourlyMatchCounts(scoped)
	case SeriesDaily:
		out.Trends.Daily = aggregate.DailyActivePlayers(scoped)
	case SeriesCumulative:
		out.Trends.Cumulative = downsample(aggregate.CumulativeWinRate(scoped), maxCumulativePoints)
	case SeriesRanks:
		out.Players.Ranks = aggregate.RankDistribution(scoped)
	case SeriesNewcomers:
		out.Players.Newcomers = aggregate.NewcomerDistribution(scoped)
	case SeriesDurations:
		out.Matches.Durations = aggregate.DurationHistogram(scoped, aggregate.DefaultDurationBins)
	case SeriesPowerDiff:
		out.Matches.PowerDiff = aggregate.WinRateByPowerDiff(scoped)
	}

	metrics.RecordRenderDuration("chart", float64(time.Since(start).Milliseconds()))
	return out, nil
}

// Export returns the rows the detail view of q shows, uncapped.
func (s *Service) Export(ctx context.Context, q filter.Query) (*model.Dataset, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := filter.Apply(filter.Scope(snap.Dataset, q.Scope), q.Filter)
	metrics.RecordExportRows(out.Len())
	return out, nil
}

// Summary returns the headline figures of the scoped dataset.
func (s *Service) Summary(ctx context.Context, scope filter.DateScope) (aggregate.Summary, *Notice, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return aggregate.Summary{}, nil, err
	}
	return aggregate.Summarize(filter.Scope(snap.Dataset, scope)), snap.Notice, nil
}

func (s *Service) detail(ds *model.Dataset) Detail {
	d := Detail{
		Summary: aggregate.Summarize(ds),
		Header:  tabular.Header(ds),
		Total:   ds.Len(),
	}
	n := ds.Len()
	if n > s.maxTableRows {
		n = s.maxTableRows
		d.Truncated = true
	}
	d.Rows = make([][]string, n)
	for i := 0; i < n; i++ {
		d.Rows[i] = tabular.Row(ds, i)
	}
	return d
}

// downsample keeps at most limit points, evenly spaced, always keeping the
// last point so the series still ends at the overall rate.
func downsample(points []aggregate.WinRatePoint, limit int) []aggregate.WinRatePoint {
	if len(points) <= limit || limit < 2 {
		return points
	}
	out := make([]aggregate.WinRatePoint, 0, limit)
	step := float64(len(points)-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		out = append(out, points[int(float64(i)*step+0.5)])
	}
	out[len(out)-1] = points[len(points)-1]
	return out
}
