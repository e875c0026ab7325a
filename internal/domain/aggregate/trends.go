package aggregate

import (
	"sort"
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
)

// HourCount is the number of distinct matches ending in one hour of the day.
type HourCount struct {
	Hour    int `json:"hour"`
	Matches int `json:"matches"`
}

// DayCount is the number of distinct players active on one date.
type DayCount struct {
	Date    string `json:"date"`
	Players int    `json:"players"`
}

// WinRatePoint is the running win rate after the first Index rows.
type WinRatePoint struct {
	Index   int       `json:"index"`
	EndTime time.Time `json:"end_time"`
	WinRate float64   `json:"win_rate"`
}

// HourlyMatchCounts counts distinct matches per hour of day, hour ascending.
// Hours without matches are omitted.
func HourlyMatchCounts(ds *model.Dataset) []HourCount {
	seen := make(map[int]map[string]struct{})
	for _, r := range records(ds) {
		m := seen[r.Hour]
		if m == nil {
			m = make(map[string]struct{})
			seen[r.Hour] = m
		}
		m[r.MatchID] = struct{}{}
	}
	out := make([]HourCount, 0, len(seen))
	for h, m := range seen {
		out = append(out, HourCount{Hour: h, Matches: len(m)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// DailyActivePlayers counts distinct players per date, date ascending.
func DailyActivePlayers(ds *model.Dataset) []DayCount {
	seen := make(map[string]map[string]struct{})
	for _, r := range records(ds) {
		m := seen[r.Date]
		if m == nil {
			m = make(map[string]struct{})
			seen[r.Date] = m
		}
		m[r.PlayerID] = struct{}{}
	}
	out := make([]DayCount, 0, len(seen))
	for d, m := range seen {
		out = append(out, DayCount{Date: d, Players: len(m)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CumulativeWinRate orders rows by end time, ties by source row order, and
// returns the running win rate in percent. The last point equals the
// overall win rate.
func CumulativeWinRate(ds *model.Dataset) []WinRatePoint {
	recs := records(ds)
	if len(recs) == 0 {
		return nil
	}
	order := make([]*model.MatchRecord, len(recs))
	for i := range recs {
		order[i] = &recs[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if !a.EndTime.Equal(b.EndTime) {
			return a.EndTime.Before(b.EndTime)
		}
		return a.Seq < b.Seq
	})

	out := make([]WinRatePoint, len(order))
	wins := 0
	for i, r := range order {
		if r.IsWin {
			wins++
		}
		out[i] = WinRatePoint{Index: i + 1, EndTime: r.EndTime, WinRate: percent(wins, i+1)}
	}
	return out
}
