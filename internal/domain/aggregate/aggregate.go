// Package aggregate derives the dashboard's summary tables from a dataset.
//
// Every function is pure: it reads the dataset and returns a fresh result.
// An empty or nil dataset yields an empty result, and a zero denominator
// yields 0 rather than NaN.
package aggregate

import (
	"math"
	"sort"

	"github.com/okian/devilmatch/internal/domain/model"
)

// UnknownCategory labels players whose category cell is blank.
const UnknownCategory = "未知"

// CategoryCount is one row of a categorical distribution.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Bin is a half-open numeric interval [Lower, Upper). The last bin of a
// series is closed on both ends.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func records(ds *model.Dataset) []model.MatchRecord {
	if ds == nil {
		return nil
	}
	return ds.Records
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// bins splits [lo, hi] into n equal-width intervals. A zero span is widened
// by 0.1% on each side so every value still lands in a bin. Edges stay finite
// for any finite lo and hi.
func bins(lo, hi float64, n int) []Bin {
	if hi <= lo {
		pad := math.Abs(lo) * 0.001
		if pad == 0 {
			pad = 0.001
		}
		lo, hi = math.Max(lo-pad, -math.MaxFloat64), math.Min(hi+pad, math.MaxFloat64)
	}
	width := (hi - lo) / float64(n)
	edge := func(i int) float64 {
		if math.IsInf(width, 0) {
			t := float64(i) / float64(n)
			return lo*(1-t) + hi*t
		}
		return lo + float64(i)*width
	}
	out := make([]Bin, n)
	for i := range out {
		out[i] = Bin{Lower: edge(i), Upper: edge(i + 1)}
	}
	out[0].Lower = lo
	out[n-1].Upper = hi
	return out
}

// binIndex places v in bs, or returns -1 when v is outside every bin.
func binIndex(bs []Bin, v float64) int {
	n := len(bs)
	if n == 0 || math.IsNaN(v) || v < bs[0].Lower || v > bs[n-1].Upper {
		return -1
	}
	i := sort.Search(n, func(i int) bool { return v < bs[i].Upper })
	if i == n {
		i = n - 1
	}
	return i
}

// sortCounts orders by count desc, then name asc.
func sortCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// meanAcc averages a stream of values. It keeps a plain sum for exact
// results and a running mean for when the sum overflows.
type meanAcc struct {
	n   int
	sum float64
	run float64
}

func (a *meanAcc) add(v float64) {
	a.n++
	a.sum += v
	a.run += v/float64(a.n) - a.run/float64(a.n)
}

func (a meanAcc) mean() float64 {
	switch {
	case a.n == 0:
		return 0
	case math.IsInf(a.sum, 0) || math.IsNaN(a.sum):
		return a.run
	}
	return a.sum / float64(a.n)
}
