// Package model contains the match-statistics domain models passed between layers.
package model

import "strings"

// Column identifies a recognised column of the source spreadsheet.
type Column int

// Recognised columns. The order is the canonical export order for datasets
// built in memory (e.g. the demo snapshot).
const (
	ColUnknown Column = iota - 1
	ColPlayerID
	ColMatchID
	ColNickname
	ColDuration
	ColIsWin
	ColIsComeback
	ColRank
	ColNewcomerTier
	ColKDA
	ColPowerDiff
	ColOwnLevel5m
	ColEnemyLevel5m
	ColEndTime

	columnCount
)

var columnHeaders = [columnCount]string{
	ColPlayerID:     "玩家id",
	ColMatchID:      "对局id",
	ColNickname:     "昵称",
	ColDuration:     "对局时间",
	ColIsWin:        "是否获胜",
	ColIsComeback:   "是否翻盘",
	ColRank:         "段位",
	ColNewcomerTier: "新人类型",
	ColKDA:          "KDA",
	ColPowerDiff:    "双方队伍战力差",
	ColOwnLevel5m:   "己方5分钟平均等级",
	ColEnemyLevel5m: "敌方5分钟平均等级",
	ColEndTime:      "结束时间",
}

// Header returns the spreadsheet header of c.
func (c Column) Header() string {
	if c < 0 || c >= columnCount {
		return ""
	}
	return columnHeaders[c]
}

// Required reports whether a file without c is rejected.
func (c Column) Required() bool {
	switch c {
	case ColPlayerID, ColMatchID, ColDuration, ColIsWin, ColIsComeback, ColEndTime:
		return true
	}
	return false
}

func (c Column) String() string {
	if h := c.Header(); h != "" {
		return h
	}
	return "unknown"
}

// Columns lists every recognised column in canonical order.
func Columns() []Column {
	out := make([]Column, 0, columnCount)
	for c := Column(0); c < columnCount; c++ {
		out = append(out, c)
	}
	return out
}

// LookupColumn maps a header cell to a recognised column. Surrounding
// whitespace is ignored and ASCII letters match case-insensitively.
func LookupColumn(header string) Column {
	h := strings.TrimSpace(header)
	for c := Column(0); c < columnCount; c++ {
		if strings.EqualFold(columnHeaders[c], h) {
			return c
		}
	}
	return ColUnknown
}

// Field locates one source column. Recognised columns carry their Column;
// anything else is kept verbatim in MatchRecord.Extra at index Extra.
type Field struct {
	Name   string
	Column Column
	Extra  int
}

// Known reports whether the field maps to a recognised column.
func (f Field) Known() bool { return f.Column != ColUnknown }

// CanonicalFields returns the recognised columns as a field layout with no
// extra columns.
func CanonicalFields() []Field {
	out := make([]Field, 0, columnCount)
	for _, c := range Columns() {
		out = append(out, Field{Name: c.Header(), Column: c, Extra: -1})
	}
	return out
}
