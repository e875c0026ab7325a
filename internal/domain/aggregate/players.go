package aggregate

import (
	"sort"

	"github.com/okian/devilmatch/internal/domain/model"
)

// HeatmapParams bounds the KDA axis of the heatmap.
type HeatmapParams struct {
	Bins int     `json:"bins"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Heatmap parameter defaults and limits.
const (
	DefaultHeatmapBins = 10
	MinHeatmapBins     = 5
	MaxHeatmapBins     = 20
	DefaultHeatmapMin  = 0.0
	HeatmapMinLimit    = 10.0
	DefaultHeatmapMax  = 10.0
	HeatmapMaxLimit    = 20.0
)

// DefaultHeatmapParams returns the heatmap defaults.
func DefaultHeatmapParams() HeatmapParams {
	return HeatmapParams{Bins: DefaultHeatmapBins, Min: DefaultHeatmapMin, Max: DefaultHeatmapMax}
}

// Valid reports whether p describes a usable axis.
func (p HeatmapParams) Valid() bool {
	return p.Bins > 0 && p.Max > p.Min
}

// Heatmap counts rows per (category, KDA bin). Counts[i][j] belongs to
// Rows[i] and Bins[j].
type Heatmap struct {
	RowLabel string   `json:"row_label"`
	Rows     []string `json:"rows"`
	Bins     []Bin    `json:"bins"`
	Counts   [][]int  `json:"counts"`
	Max      int      `json:"max"`
}

// Empty reports whether the heatmap has no cells.
func (h Heatmap) Empty() bool { return len(h.Rows) == 0 }

// RankDistribution counts players by rank, using each player's most recent
// record. Blank ranks count as UnknownCategory, so the counts sum to the
// number of distinct players. Empty when the dataset has no rank column.
func RankDistribution(ds *model.Dataset) []CategoryCount {
	if ds == nil || !ds.Schema.HasRank {
		return nil
	}
	return latestDistribution(ds, func(r *model.MatchRecord) string { return r.Rank })
}

// NewcomerDistribution counts players by newcomer tier under the same rule
// as RankDistribution.
func NewcomerDistribution(ds *model.Dataset) []CategoryCount {
	if ds == nil || !ds.Schema.HasNewcomerTier {
		return nil
	}
	return latestDistribution(ds, func(r *model.MatchRecord) string { return r.NewcomerTier })
}

func latestDistribution(ds *model.Dataset, category func(*model.MatchRecord) string) []CategoryCount {
	latest := LatestPerPlayer(ds)
	if len(latest) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range latest {
		counts[categoryName(category(r))]++
	}
	return sortCounts(counts)
}

// LatestPerPlayer returns each player's most recent record: latest end
// time, ties broken by the later source row.
func LatestPerPlayer(ds *model.Dataset) map[string]*model.MatchRecord {
	recs := records(ds)
	latest := make(map[string]*model.MatchRecord)
	for i := range recs {
		r := &recs[i]
		cur, ok := latest[r.PlayerID]
		if !ok || r.EndTime.After(cur.EndTime) || (r.EndTime.Equal(cur.EndTime) && r.Seq > cur.Seq) {
			latest[r.PlayerID] = r
		}
	}
	return latest
}

func categoryName(v string) string {
	if v == "" {
		return UnknownCategory
	}
	return v
}

// KDARankHeatmap counts rows with KDA in [p.Min, p.Max] per rank and KDA
// bin. When the rank column is absent the newcomer tier is used. Empty when
// p is invalid, the KDA column is absent, or there is no category column.
func KDARankHeatmap(ds *model.Dataset, p HeatmapParams) Heatmap {
	if ds == nil || !ds.Schema.HasKDA || !p.Valid() {
		return Heatmap{}
	}

	var label string
	var category func(*model.MatchRecord) string
	switch {
	case ds.Schema.HasRank:
		label = model.ColRank.Header()
		category = func(r *model.MatchRecord) string { return r.Rank }
	case ds.Schema.HasNewcomerTier:
		label = model.ColNewcomerTier.Header()
		category = func(r *model.MatchRecord) string { return r.NewcomerTier }
	default:
		return Heatmap{}
	}

	bs := bins(p.Min, p.Max, p.Bins)
	grid := make(map[string][]int)
	totals := make(map[string]int)
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.KDA == nil {
			continue
		}
		j := binIndex(bs, *r.KDA)
		if j < 0 {
			continue
		}
		name := categoryName(category(r))
		row := grid[name]
		if row == nil {
			row = make([]int, len(bs))
			grid[name] = row
		}
		row[j]++
		totals[name]++
	}
	if len(grid) == 0 {
		return Heatmap{}
	}

	h := Heatmap{RowLabel: label, Bins: bs}
	for _, c := range sortCounts(totals) {
		h.Rows = append(h.Rows, c.Name)
		h.Counts = append(h.Counts, grid[c.Name])
		for _, n := range grid[c.Name] {
			if n > h.Max {
				h.Max = n
			}
		}
	}
	return h
}

// distinctPlayers counts distinct player ids.
func distinctPlayers(recs []model.MatchRecord) int {
	seen := make(map[string]struct{}, len(recs))
	for i := range recs {
		seen[recs[i].PlayerID] = struct{}{}
	}
	return len(seen)
}

// Ranks returns the distinct non-blank rank values in ascending order.
func Ranks(ds *model.Dataset) []string {
	if ds == nil || !ds.Schema.HasRank {
		return nil
	}
	seen := make(map[string]struct{})
	for i := range ds.Records {
		if r := ds.Records[i].Rank; r != "" {
			seen[r] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
