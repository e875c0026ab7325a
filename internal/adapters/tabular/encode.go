package tabular

import (
	"strconv"

	"github.com/okian/devilmatch/internal/domain/model"
)

// fieldsOf returns the column layout to write. Datasets built in memory have
// no layout and are written with the canonical columns.
func fieldsOf(ds *model.Dataset) []model.Field {
	if ds == nil || len(ds.Fields) == 0 {
		return model.CanonicalFields()
	}
	return ds.Fields
}

func headerOf(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// cellString formats one cell so that Decode reads it back unchanged.
func cellString(rec *model.MatchRecord, f model.Field) string {
	switch f.Column {
	case model.ColUnknown:
		if f.Extra >= 0 && f.Extra < len(rec.Extra) {
			return rec.Extra[f.Extra]
		}
		return ""
	case model.ColPlayerID:
		return rec.PlayerID
	case model.ColMatchID:
		return rec.MatchID
	case model.ColNickname:
		return rec.Nickname
	case model.ColDuration:
		return formatFloat(rec.DurationSeconds)
	case model.ColIsWin:
		return formatBool(rec.IsWin)
	case model.ColIsComeback:
		return formatBool(rec.IsComeback)
	case model.ColRank:
		return rec.Rank
	case model.ColNewcomerTier:
		return rec.NewcomerTier
	case model.ColKDA:
		return formatOptional(rec.KDA)
	case model.ColPowerDiff:
		return formatOptional(rec.PowerDiff)
	case model.ColOwnLevel5m:
		return formatOptional(rec.OwnLevel5m)
	case model.ColEnemyLevel5m:
		return formatOptional(rec.EnemyLevel5m)
	case model.ColEndTime:
		return rec.EndTime.Format(model.DateTimeLayout)
	}
	return ""
}

// cellValue is cellString with numeric columns kept numeric, for writers
// that store typed cells.
func cellValue(rec *model.MatchRecord, f model.Field) interface{} {
	switch f.Column {
	case model.ColDuration:
		return rec.DurationSeconds
	case model.ColIsWin:
		return boolInt(rec.IsWin)
	case model.ColIsComeback:
		return boolInt(rec.IsComeback)
	case model.ColKDA, model.ColPowerDiff, model.ColOwnLevel5m, model.ColEnemyLevel5m:
		if p := optionalOf(rec, f.Column); p != nil {
			return *p
		}
		return ""
	}
	return cellString(rec, f)
}

func optionalOf(rec *model.MatchRecord, c model.Column) *float64 {
	switch c {
	case model.ColKDA:
		return rec.KDA
	case model.ColPowerDiff:
		return rec.PowerDiff
	case model.ColOwnLevel5m:
		return rec.OwnLevel5m
	case model.ColEnemyLevel5m:
		return rec.EnemyLevel5m
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Header returns the column names of ds in export order.
func Header(ds *model.Dataset) []string {
	return headerOf(fieldsOf(ds))
}

// Row formats record i of ds the way the CSV export writes it.
func Row(ds *model.Dataset, i int) []string {
	fields := fieldsOf(ds)
	out := make([]string, len(fields))
	for j, f := range fields {
		out[j] = cellString(&ds.Records[i], f)
	}
	return out
}
