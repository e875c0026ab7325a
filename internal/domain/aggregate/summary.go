package aggregate

import (
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
)

// Win-rate balance verdicts.
const (
	BalanceEven = "平衡"
	BalanceHigh = "偏高"
	BalanceLow  = "偏低"
)

// Summary holds the headline figures of a dataset. The same figures back the
// page cards and the detail view summary.
type Summary struct {
	Rows    int `json:"rows"`
	Players int `json:"players"`
	Matches int `json:"matches"`

	WinRate float64 `json:"win_rate"`
	Balance string  `json:"balance"`

	MeanDuration float64 `json:"mean_duration"`
	MinDuration  float64 `json:"min_duration"`
	MaxDuration  float64 `json:"max_duration"`
	// DurationExcess is the mean duration over ReferenceDurationSecs; nil
	// when the mean does not exceed it.
	DurationExcess *float64 `json:"duration_excess"`

	// MeanKDA is nil when the KDA column is absent or has no values.
	MeanKDA *float64 `json:"mean_kda"`

	FirstEnd time.Time `json:"first_end"`
	LastEnd  time.Time `json:"last_end"`

	ComebackMatches int     `json:"comeback_matches"`
	ComebackRate    float64 `json:"comeback_rate"`
}

// Summarize computes the headline figures of ds.
func Summarize(ds *model.Dataset) Summary {
	var s Summary
	recs := records(ds)
	if len(recs) == 0 {
		return s
	}

	matches := make(map[string]struct{})
	comeback := make(map[string]struct{})
	wins := 0
	var dur, kda meanAcc
	s.MinDuration, s.MaxDuration = recs[0].DurationSeconds, recs[0].DurationSeconds
	s.FirstEnd, s.LastEnd = recs[0].EndTime, recs[0].EndTime

	for i := range recs {
		r := &recs[i]
		matches[r.MatchID] = struct{}{}
		if r.IsComeback {
			comeback[r.MatchID] = struct{}{}
		}
		if r.IsWin {
			wins++
		}
		dur.add(r.DurationSeconds)
		if r.DurationSeconds < s.MinDuration {
			s.MinDuration = r.DurationSeconds
		}
		if r.DurationSeconds > s.MaxDuration {
			s.MaxDuration = r.DurationSeconds
		}
		if r.EndTime.Before(s.FirstEnd) {
			s.FirstEnd = r.EndTime
		}
		if r.EndTime.After(s.LastEnd) {
			s.LastEnd = r.EndTime
		}
		if r.KDA != nil {
			kda.add(*r.KDA)
		}
	}

	s.Rows = len(recs)
	s.Players = distinctPlayers(recs)
	s.Matches = len(matches)
	s.WinRate = percent(wins, s.Rows)
	s.Balance = WinRateBalance(s.WinRate)
	s.MeanDuration = dur.mean()
	s.DurationExcess = DurationExcess(s.MeanDuration)
	if ds.Schema.HasKDA && kda.n > 0 {
		s.MeanKDA = model.Float(kda.mean())
	}
	s.ComebackMatches = len(comeback)
	s.ComebackRate = percent(s.ComebackMatches, s.Matches)
	return s
}

// WinRateBalance classifies a win-rate percentage: 48 to 52 inclusive is
// even, anything else high or low.
func WinRateBalance(rate float64) string {
	switch {
	case rate > 52:
		return BalanceHigh
	case rate < 48:
		return BalanceLow
	}
	return BalanceEven
}

// DurationExcess returns how far meanSecs exceeds ReferenceDurationSecs, or
// nil when it does not.
func DurationExcess(meanSecs float64) *float64 {
	if meanSecs <= ReferenceDurationSecs {
		return nil
	}
	return model.Float(meanSecs - ReferenceDurationSecs)
}
