package model

import (
	"math"
	"time"
)

// Layouts of the derived time fields.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// MatchRecord is one player's row for one match.
type MatchRecord struct {
	// Seq is the zero-based position of the row in the source file. It is the
	// tie-break wherever ordering by EndTime is ambiguous.
	Seq int

	PlayerID string
	MatchID  string
	Nickname string

	DurationSeconds float64
	IsWin           bool
	IsComeback      bool

	// Rank and NewcomerTier are empty when the cell was blank.
	Rank         string
	NewcomerTier string

	// Optional numeric cells; nil when blank.
	KDA          *float64
	PowerDiff    *float64
	OwnLevel5m   *float64
	EnemyLevel5m *float64

	EndTime time.Time

	// Derived from EndTime by DeriveTime.
	Date string
	Hour int

	// Extra holds cells of unrecognised columns, indexed by Field.Extra.
	Extra []string
}

// DeriveTime recomputes Date and Hour from EndTime.
func (r *MatchRecord) DeriveTime() {
	r.Date = r.EndTime.Format(DateLayout)
	r.Hour = r.EndTime.Hour()
}

// LevelGap returns the enemy minus own average level at five minutes. A gap
// that does not fit a float64 counts as absent.
func (r MatchRecord) LevelGap() (float64, bool) {
	if r.OwnLevel5m == nil || r.EnemyLevel5m == nil {
		return 0, false
	}
	g := *r.EnemyLevel5m - *r.OwnLevel5m
	if math.IsInf(g, 0) {
		return 0, false
	}
	return g, true
}

// Float returns a pointer to v, for populating optional numeric fields.
func Float(v float64) *float64 { return &v }
