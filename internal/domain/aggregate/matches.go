package aggregate

import (
	"github.com/okian/devilmatch/internal/domain/model"
)

// Bin counts for the match charts.
const (
	PowerDiffBins         = 10
	DefaultDurationBins   = 30
	ReferenceDurationSecs = 720.0
)

// PowerDiffBin is the win rate of the rows whose power difference falls in
// one interval.
type PowerDiffBin struct {
	Bin
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// HistogramBin is the number of rows in one interval.
type HistogramBin struct {
	Bin
	Count int `json:"count"`
}

// Histogram is the distribution of match durations.
type Histogram struct {
	Bins []HistogramBin `json:"bins"`
	Mean float64        `json:"mean"`
}

// ComebackStats compares comeback rows against normal rows.
type ComebackStats struct {
	ComebackMatches int     `json:"comeback_matches"`
	TotalMatches    int     `json:"total_matches"`
	ComebackRate    float64 `json:"comeback_rate"`

	ComebackRows         int     `json:"comeback_rows"`
	NormalRows           int     `json:"normal_rows"`
	MeanDurationComeback float64 `json:"mean_duration_comeback"`
	MeanDurationNormal   float64 `json:"mean_duration_normal"`
	DurationDelta        float64 `json:"duration_delta"`

	// Nil when the column is absent or no comeback row carries a value.
	MeanPowerDiff *float64 `json:"mean_power_diff"`
	MeanLevelGap  *float64 `json:"mean_level_gap"`
}

// WinRateByPowerDiff splits the observed power-difference range into
// PowerDiffBins equal-width bins and reports the win rate of each. Bins
// without rows have Count 0 and WinRate 0. Empty when the column is absent
// or carries no values.
func WinRateByPowerDiff(ds *model.Dataset) []PowerDiffBin {
	if ds == nil || !ds.Schema.HasPowerDiff {
		return nil
	}
	lo, hi, ok := powerDiffRange(ds.Records)
	if !ok {
		return nil
	}

	bs := bins(lo, hi, PowerDiffBins)
	out := make([]PowerDiffBin, len(bs))
	for i, b := range bs {
		out[i].Bin = b
	}
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.PowerDiff == nil {
			continue
		}
		j := binIndex(bs, *r.PowerDiff)
		if j < 0 {
			continue
		}
		out[j].Count++
		if r.IsWin {
			out[j].Wins++
		}
	}
	for i := range out {
		out[i].WinRate = percent(out[i].Wins, out[i].Count)
	}
	return out
}

func powerDiffRange(recs []model.MatchRecord) (lo, hi float64, ok bool) {
	for i := range recs {
		p := recs[i].PowerDiff
		if p == nil {
			continue
		}
		if !ok {
			lo, hi, ok = *p, *p, true
			continue
		}
		if *p < lo {
			lo = *p
		}
		if *p > hi {
			hi = *p
		}
	}
	return lo, hi, ok
}

// Comebacks computes the comeback analysis. Match counts are distinct match
// ids; duration and difference means are over player rows.
func Comebacks(ds *model.Dataset) ComebackStats {
	var st ComebackStats
	recs := records(ds)
	if len(recs) == 0 {
		return st
	}

	all := make(map[string]struct{})
	comeback := make(map[string]struct{})
	var durCome, durNormal, power, gap meanAcc
	for i := range recs {
		r := &recs[i]
		all[r.MatchID] = struct{}{}
		if !r.IsComeback {
			st.NormalRows++
			durNormal.add(r.DurationSeconds)
			continue
		}
		comeback[r.MatchID] = struct{}{}
		st.ComebackRows++
		durCome.add(r.DurationSeconds)
		if r.PowerDiff != nil {
			power.add(*r.PowerDiff)
		}
		if g, ok := r.LevelGap(); ok {
			gap.add(g)
		}
	}

	st.TotalMatches = len(all)
	st.ComebackMatches = len(comeback)
	st.ComebackRate = percent(st.ComebackMatches, st.TotalMatches)
	st.MeanDurationComeback = durCome.mean()
	st.MeanDurationNormal = durNormal.mean()
	if st.ComebackRows > 0 && st.NormalRows > 0 {
		st.DurationDelta = st.MeanDurationComeback - st.MeanDurationNormal
	}
	if ds.Schema.HasPowerDiff && power.n > 0 {
		st.MeanPowerDiff = model.Float(power.mean())
	}
	if ds.Schema.HasLevelGap && gap.n > 0 {
		st.MeanLevelGap = model.Float(gap.mean())
	}
	return st
}

// DurationHistogram splits the observed duration range into n equal-width
// bins. n below 1 uses DefaultDurationBins.
func DurationHistogram(ds *model.Dataset, n int) Histogram {
	recs := records(ds)
	if len(recs) == 0 {
		return Histogram{}
	}
	if n < 1 {
		n = DefaultDurationBins
	}

	lo, hi := recs[0].DurationSeconds, recs[0].DurationSeconds
	var sum meanAcc
	for i := range recs {
		d := recs[i].DurationSeconds
		sum.add(d)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}

	bs := bins(lo, hi, n)
	h := Histogram{Bins: make([]HistogramBin, len(bs)), Mean: sum.mean()}
	for i, b := range bs {
		h.Bins[i].Bin = b
	}
	for i := range recs {
		if j := binIndex(bs, recs[i].DurationSeconds); j >= 0 {
			h.Bins[j].Count++
		}
	}
	return h
}
