package tabular

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// timeLayouts are tried in order before falling back to Excel serial dates.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
	"2006/01/02",
}

// blankTokens are cell values treated as "no value" for optional columns.
var blankTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"n/a":  true,
	"#n/a": true,
}

var (
	errBlank    = errors.New("value is blank")
	errNegative = errors.New("value must not be negative")
)

// Decode types the rows of t into a dataset. Required columns must be present
// and every row must carry valid values for them; optional cells that are
// blank become absent values.
func Decode(t *Table, source string, loadedAt time.Time) (*model.Dataset, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: empty table", ErrDecode)
	}

	fields, err := layout(t.Header)
	if err != nil {
		return nil, err
	}

	extras := 0
	for _, f := range fields {
		if !f.Known() {
			extras++
		}
	}

	records := make([]model.MatchRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := model.MatchRecord{Seq: i}
		if extras > 0 {
			rec.Extra = make([]string, extras)
		}
		for col, f := range fields {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			if err := assign(&rec, f, cell); err != nil {
				// +2: one-based rows plus the header row.
				return nil, fmt.Errorf("%w: %w: row %d, column %s: %v", ErrDecode, model.ErrInvalidValue, i+2, f.Name, err)
			}
		}
		rec.DeriveTime()
		records = append(records, rec)
	}

	return model.NewDataset(fields, records, source, loadedAt), nil
}

// layout maps the header row to fields and checks required columns.
func layout(header []string) ([]model.Field, error) {
	fields := make([]model.Field, 0, len(header))
	seen := make(map[model.Column]bool)
	extra := 0
	for _, h := range header {
		c := model.LookupColumn(h)
		if c != model.ColUnknown && !seen[c] {
			seen[c] = true
			fields = append(fields, model.Field{Name: c.Header(), Column: c, Extra: -1})
			continue
		}
		fields = append(fields, model.Field{Name: h, Column: model.ColUnknown, Extra: extra})
		extra++
	}

	var missing []string
	for _, c := range model.Columns() {
		if c.Required() && !seen[c] {
			missing = append(missing, c.Header())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w: %s", ErrDecode, model.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return fields, nil
}

func assign(rec *model.MatchRecord, f model.Field, cell string) error {
	v := strings.TrimSpace(cell)
	var err error
	switch f.Column {
	case model.ColUnknown:
		rec.Extra[f.Extra] = cell
	case model.ColPlayerID:
		rec.PlayerID, err = requiredString(v)
	case model.ColMatchID:
		rec.MatchID, err = requiredString(v)
	case model.ColNickname:
		rec.Nickname = v
	case model.ColDuration:
		rec.DurationSeconds, err = requiredFloat(v)
		if err == nil && rec.DurationSeconds < 0 {
			err = errNegative
		}
	case model.ColIsWin:
		rec.IsWin, err = parseBool(v)
	case model.ColIsComeback:
		rec.IsComeback, err = parseBool(v)
	case model.ColRank:
		rec.Rank = optionalString(v)
	case model.ColNewcomerTier:
		rec.NewcomerTier = optionalString(v)
	case model.ColKDA:
		rec.KDA, err = optionalFloat(v)
	case model.ColPowerDiff:
		rec.PowerDiff, err = optionalFloat(v)
	case model.ColOwnLevel5m:
		rec.OwnLevel5m, err = optionalFloat(v)
	case model.ColEnemyLevel5m:
		rec.EnemyLevel5m, err = optionalFloat(v)
	case model.ColEndTime:
		rec.EndTime, err = parseTime(v)
	}
	return err
}

func requiredString(v string) (string, error) {
	if v == "" {
		return "", errBlank
	}
	return v, nil
}

func optionalString(v string) string {
	if blankTokens[strings.ToLower(v)] {
		return ""
	}
	return v
}

func requiredFloat(v string) (float64, error) {
	f, err := optionalFloat(v)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errBlank
	}
	return *f, nil
}

func optionalFloat(v string) (*float64, error) {
	if blankTokens[strings.ToLower(v)] {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return &f, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "1.0", "true", "t", "yes", "y", "是":
		return true, nil
	case "0", "0.0", "false", "f", "no", "n", "否":
		return false, nil
	case "":
		return false, errBlank
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}

// parseTime reads a timestamp as naive wall-clock time. Zoned inputs keep
// their written clock reading; the result is always in UTC.
func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errBlank
	}
	for _, l := range timeLayouts {
		t, err := time.ParseInLocation(l, v, time.UTC)
		if err == nil {
			return wallClock(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("not a timestamp: %q", v)
		}
		return t.Round(time.Millisecond).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %q", v)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
