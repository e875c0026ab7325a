package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/devilmatch/internal/domain/aggregate"
)

// Query parameter names and limits.
const (
	ParamFrom    = "from"
	ParamTo      = "to"
	ParamRank    = "rank"
	ParamKDAMin  = "kda_min"
	ParamKDAMax  = "kda_max"
	ParamWin     = "win"
	ParamBins    = "hm_bins"
	ParamHeatMin = "hm_min"
	ParamHeatMax = "hm_max"
	KDAFilterMax = 20.0
)

// Query is everything a page request selects.
type Query struct {
	Scope   DateScope               `json:"scope"`
	Filter  Spec                    `json:"filter"`
	Heatmap aggregate.HeatmapParams `json:"heatmap"`
}

// ParseQuery reads a Query from request parameters. Unparseable values keep
// their defaults and numeric values are clamped to their allowed ranges.
func ParseQuery(v url.Values) Query {
	q := Query{Heatmap: aggregate.DefaultHeatmapParams()}

	if s := strings.TrimSpace(v.Get(ParamFrom)); validDate(s) {
		q.Scope.From = s
	}
	if s := strings.TrimSpace(v.Get(ParamTo)); validDate(s) {
		q.Scope.To = s
	}
	if q.Scope.From != "" && q.Scope.To != "" && q.Scope.From > q.Scope.To {
		q.Scope.From, q.Scope.To = q.Scope.To, q.Scope.From
	}

	for _, r := range v[ParamRank] {
		if r = strings.TrimSpace(r); r != "" {
			q.Filter.Ranks = append(q.Filter.Ranks, r)
		}
	}
	q.Filter.KDAMin = bound(v.Get(ParamKDAMin), 0, KDAFilterMax)
	q.Filter.KDAMax = bound(v.Get(ParamKDAMax), 0, KDAFilterMax)
	q.Filter.Win = ParseWinState(v.Get(ParamWin))

	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamBins))); err == nil {
		q.Heatmap.Bins = clampInt(n, aggregate.MinHeatmapBins, aggregate.MaxHeatmapBins)
	}
	if f, ok := number(v.Get(ParamHeatMin)); ok {
		q.Heatmap.Min = clamp(f, 0, aggregate.HeatmapMinLimit)
	}
	if f, ok := number(v.Get(ParamHeatMax)); ok {
		q.Heatmap.Max = clamp(f, 0, aggregate.HeatmapMaxLimit)
	}
	return q
}

// Values encodes q as request parameters. Defaults are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Scope.From != "" {
		v.Set(ParamFrom, q.Scope.From)
	}
	if q.Scope.To != "" {
		v.Set(ParamTo, q.Scope.To)
	}
	for _, r := range q.Filter.Ranks {
		v.Add(ParamRank, r)
	}
	if q.Filter.KDAMin != nil {
		v.Set(ParamKDAMin, formatNumber(*q.Filter.KDAMin))
	}
	if q.Filter.KDAMax != nil {
		v.Set(ParamKDAMax, formatNumber(*q.Filter.KDAMax))
	}
	if q.Filter.Win != WinAny {
		v.Set(ParamWin, q.Filter.Win.String())
	}
	def := aggregate.DefaultHeatmapParams()
	if q.Heatmap.Bins != def.Bins {
		v.Set(ParamBins, strconv.Itoa(q.Heatmap.Bins))
	}
	if q.Heatmap.Min != def.Min {
		v.Set(ParamHeatMin, formatNumber(q.Heatmap.Min))
	}
	if q.Heatmap.Max != def.Max {
		v.Set(ParamHeatMax, formatNumber(q.Heatmap.Max))
	}
	return v
}

func bound(s string, lo, hi float64) *float64 {
	f, ok := number(s)
	if !ok {
		return nil
	}
	f = clamp(f, lo, hi)
	return &f
}

func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
