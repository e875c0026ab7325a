package filter

import (
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
)

// DateScope limits the page to an inclusive range of dates (YYYY-MM-DD).
// An empty bound is open.
type DateScope struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IsZero reports whether the scope covers every date.
func (d DateScope) IsZero() bool { return d.From == "" && d.To == "" }

// Contains reports whether date lies within the scope.
func (d DateScope) Contains(date string) bool {
	if d.From != "" && date < d.From {
		return false
	}
	if d.To != "" && date > d.To {
		return false
	}
	return true
}

// Scope returns the rows of ds whose date lies within d.
func Scope(ds *model.Dataset, d DateScope) *model.Dataset {
	if ds == nil {
		return model.Empty()
	}
	if d.IsZero() {
		return ds
	}
	out := make([]model.MatchRecord, 0, len(ds.Records))
	for i := range ds.Records {
		if d.Contains(ds.Records[i].Date) {
			out = append(out, ds.Records[i])
		}
	}
	return ds.WithRecords(out)
}

// DateBounds returns the first and last dates present in ds.
func DateBounds(ds *model.Dataset) (first, last string, ok bool) {
	if ds == nil {
		return "", "", false
	}
	for i := range ds.Records {
		date := ds.Records[i].Date
		if !ok || date < first {
			first = date
		}
		if !ok || date > last {
			last = date
		}
		ok = true
	}
	return first, last, ok
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}
