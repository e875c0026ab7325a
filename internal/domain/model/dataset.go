package model

import "time"

// Schema holds the capability flags of a dataset, computed once from the
// columns present in the source file.
type Schema struct {
	HasRank         bool `json:"has_rank"`
	HasNewcomerTier bool `json:"has_newcomer_tier"`
	HasKDA          bool `json:"has_kda"`
	HasPowerDiff    bool `json:"has_power_diff"`
	HasLevelGap     bool `json:"has_level_gap"`
	HasNickname     bool `json:"has_nickname"`
}

// SchemaFor derives the capability flags from a column layout.
func SchemaFor(fields []Field) Schema {
	present := make(map[Column]bool, len(fields))
	for _, f := range fields {
		if f.Known() {
			present[f.Column] = true
		}
	}
	return Schema{
		HasRank:         present[ColRank],
		HasNewcomerTier: present[ColNewcomerTier],
		HasKDA:          present[ColKDA],
		HasPowerDiff:    present[ColPowerDiff],
		HasLevelGap:     present[ColOwnLevel5m] && present[ColEnemyLevel5m],
		HasNickname:     present[ColNickname],
	}
}

// Dataset is the loaded table. It is immutable once built: filters and scopes
// return new datasets that share Fields and Schema with their parent.
type Dataset struct {
	Records  []MatchRecord
	Fields   []Field
	Schema   Schema
	Source   string
	LoadedAt time.Time
}

// NewDataset builds a dataset and computes its schema from fields.
func NewDataset(fields []Field, records []MatchRecord, source string, loadedAt time.Time) *Dataset {
	return &Dataset{
		Records:  records,
		Fields:   fields,
		Schema:   SchemaFor(fields),
		Source:   source,
		LoadedAt: loadedAt,
	}
}

// Empty returns a dataset with no rows and no optional capabilities.
func Empty() *Dataset {
	return &Dataset{}
}

// Len returns the number of rows. A nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset has no rows.
func (d *Dataset) IsEmpty() bool { return d.Len() == 0 }

// WithRecords returns a dataset view over records that keeps d's layout,
// schema and provenance.
func (d *Dataset) WithRecords(records []MatchRecord) *Dataset {
	if d == nil {
		return &Dataset{Records: records}
	}
	return &Dataset{
		Records:  records,
		Fields:   d.Fields,
		Schema:   d.Schema,
		Source:   d.Source,
		LoadedAt: d.LoadedAt,
	}
}
