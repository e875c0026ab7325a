// Package filter narrows a dataset for the detail view and the date-range
// selector.
package filter

import (
	"github.com/okian/devilmatch/internal/domain/model"
)

// WinState selects rows by outcome.
type WinState int

// Outcome selections.
const (
	WinAny WinState = iota
	WinOnly
	LossOnly
)

func (w WinState) String() string {
	switch w {
	case WinOnly:
		return "win"
	case LossOnly:
		return "loss"
	}
	return "any"
}

// MarshalText encodes w by name.
func (w WinState) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// ParseWinState reads a win selection. Unrecognised values select any.
func ParseWinState(s string) WinState {
	switch s {
	case "win", "1", "true", "是":
		return WinOnly
	case "loss", "0", "false", "否":
		return LossOnly
	}
	return WinAny
}

// Spec is the detail view filter. The zero value keeps every row.
type Spec struct {
	// Ranks keeps rows whose rank is listed; empty keeps all.
	Ranks []string `json:"ranks"`
	// KDAMin and KDAMax bound KDA inclusively; nil leaves a side open.
	KDAMin *float64 `json:"kda_min"`
	KDAMax *float64 `json:"kda_max"`
	Win    WinState `json:"win"`
}

// IsZero reports whether s keeps every row.
func (s Spec) IsZero() bool {
	return len(s.Ranks) == 0 && s.KDAMin == nil && s.KDAMax == nil && s.Win == WinAny
}

// Apply returns the rows of ds matching every condition of s. The rank
// condition is skipped when ds has no rank column and the KDA condition when
// it has no KDA column; a row without a KDA value fails any set KDA bound.
// ds is never modified.
func Apply(ds *model.Dataset, s Spec) *model.Dataset {
	if ds == nil {
		return model.Empty()
	}

	var ranks map[string]struct{}
	if len(s.Ranks) > 0 && ds.Schema.HasRank {
		ranks = make(map[string]struct{}, len(s.Ranks))
		for _, r := range s.Ranks {
			ranks[r] = struct{}{}
		}
	}
	kda := ds.Schema.HasKDA && (s.KDAMin != nil || s.KDAMax != nil)

	out := make([]model.MatchRecord, 0, len(ds.Records))
	for i := range ds.Records {
		r := &ds.Records[i]
		if ranks != nil {
			if _, ok := ranks[r.Rank]; !ok {
				continue
			}
		}
		if kda && !inRange(r.KDA, s.KDAMin, s.KDAMax) {
			continue
		}
		if s.Win == WinOnly && !r.IsWin || s.Win == LossOnly && r.IsWin {
			continue
		}
		out = append(out, *r)
	}
	return ds.WithRecords(out)
}

func inRange(v, lo, hi *float64) bool {
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	if hi != nil && *v > *hi {
		return false
	}
	return true
}
