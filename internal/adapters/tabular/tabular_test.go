package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/devilmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = "\ufeff玩家id,对局id,昵称,对局时间,是否获胜,是否翻盘,段位,KDA,备注,结束时间\n" +
	"p1,m1,阿狸,900,1,1,黄金,2.5,first,2025-01-01 12:00:00\n" +
	"p2,m1,,600,0,0,,,,2025/01/01 13:30\n"

func TestDecodeCSV(t *testing.T) {
	Convey("Given a CSV export with a byte order mark", t, func() {
		loaded := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		ds, err := Parse(strings.NewReader(sampleCSV), FormatCSV, "day.csv", loaded)
		So(err, ShouldBeNil)

		Convey("Then every row is typed", func() {
			So(ds.Len(), ShouldEqual, 2)
			first := ds.Records[0]
			So(first.PlayerID, ShouldEqual, "p1")
			So(first.DurationSeconds, ShouldEqual, 900)
			So(first.IsWin, ShouldBeTrue)
			So(first.IsComeback, ShouldBeTrue)
			So(*first.KDA, ShouldEqual, 2.5)
			So(first.Date, ShouldEqual, "2025-01-01")
			So(first.Hour, ShouldEqual, 12)
			So(first.Extra, ShouldResemble, []string{"first"})
		})

		Convey("Then blank optional cells are absent", func() {
			second := ds.Records[1]
			So(second.KDA, ShouldBeNil)
			So(second.Rank, ShouldEqual, "")
			So(second.Seq, ShouldEqual, 1)
			So(second.EndTime, ShouldEqual, time.Date(2025, 1, 1, 13, 30, 0, 0, time.UTC))
		})

		Convey("Then the schema reflects the present columns", func() {
			So(ds.Schema.HasKDA, ShouldBeTrue)
			So(ds.Schema.HasRank, ShouldBeTrue)
			So(ds.Schema.HasPowerDiff, ShouldBeFalse)
			So(ds.Schema.HasLevelGap, ShouldBeFalse)
			So(ds.Source, ShouldEqual, "day.csv")
			So(ds.LoadedAt, ShouldEqual, loaded)
		})
	})

	Convey("Given a file without the win column", t, func() {
		in := "玩家id,对局id,对局时间,是否翻盘,结束时间\np1,m1,900,0,2025-01-01 12:00:00\n"
		_, err := Parse(strings.NewReader(in), FormatCSV, "bad.csv", time.Now())

		Convey("Then decoding names the missing column", func() {
			So(errors.Is(err, model.ErrMissingColumn), ShouldBeTrue)
			So(errors.Is(err, ErrDecode), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "是否获胜")
		})
	})

	Convey("Given a row with an unreadable flag", t, func() {
		in := "玩家id,对局id,对局时间,是否获胜,是否翻盘,结束时间\np1,m1,900,maybe,0,2025-01-01 12:00:00\n"
		_, err := Parse(strings.NewReader(in), FormatCSV, "bad.csv", time.Now())

		Convey("Then decoding reports the cell", func() {
			So(errors.Is(err, model.ErrInvalidValue), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "row 2")
		})
	})

	Convey("Given a negative duration", t, func() {
		in := "玩家id,对局id,对局时间,是否获胜,是否翻盘,结束时间\np1,m1,-5,1,0,2025-01-01 12:00:00\n"
		_, err := Parse(strings.NewReader(in), FormatCSV, "bad.csv", time.Now())
		So(errors.Is(err, model.ErrInvalidValue), ShouldBeTrue)
	})

	Convey("Given a header with no rows", t, func() {
		in := "玩家id,对局id,对局时间,是否获胜,是否翻盘,结束时间\n\n"
		ds, err := Parse(strings.NewReader(in), FormatCSV, "empty.csv", time.Now())
		So(err, ShouldBeNil)
		So(ds.IsEmpty(), ShouldBeTrue)
		So(len(ds.Fields), ShouldEqual, 6)
	})

	Convey("Given a completely empty file", t, func() {
		_, err := Parse(strings.NewReader(""), FormatCSV, "none.csv", time.Now())
		So(errors.Is(err, ErrDecode), ShouldBeTrue)
	})
}

func TestParseCells(t *testing.T) {
	Convey("Given timestamp cells", t, func() {
		Convey("When an Excel serial date is read", func() {
			ts, err := parseTime("45658.5")
			So(err, ShouldBeNil)
			So(ts, ShouldEqual, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
		})

		Convey("When a zoned timestamp is read", func() {
			ts, err := parseTime("2025-01-01T08:15:00+08:00")
			So(err, ShouldBeNil)
			So(ts.Hour(), ShouldEqual, 8)
			So(ts.Location(), ShouldEqual, time.UTC)
		})

		Convey("When garbage is read", func() {
			_, err := parseTime("yesterday")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given flag cells", t, func() {
		for _, v := range []string{"1", "TRUE", "yes", "是"} {
			b, err := parseBool(v)
			So(err, ShouldBeNil)
			So(b, ShouldBeTrue)
		}
		for _, v := range []string{"0", "false", "No", "否"} {
			b, err := parseBool(v)
			So(err, ShouldBeNil)
			So(b, ShouldBeFalse)
		}
	})

	Convey("Given optional numeric cells", t, func() {
		v, err := optionalFloat("NaN")
		So(err, ShouldBeNil)
		So(v, ShouldBeNil)

		_, err = optionalFloat("abc")
		So(err, ShouldNotBeNil)
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a dataset with every column", t, func() {
		loaded := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		recs := []model.MatchRecord{
			{
				Seq: 0, PlayerID: "p1", MatchID: "m1", Nickname: "阿狸",
				DurationSeconds: 754.5, IsWin: true, IsComeback: true,
				Rank: "黄金", NewcomerTier: "新手", KDA: model.Float(3.25),
				PowerDiff: model.Float(-1200), OwnLevel5m: model.Float(6), EnemyLevel5m: model.Float(7.5),
				EndTime: time.Date(2025, 1, 1, 21, 4, 5, 0, time.UTC),
			},
			{
				Seq: 1, PlayerID: "p2", MatchID: "m1",
				DurationSeconds: 754.5,
				EndTime:         time.Date(2025, 1, 1, 21, 4, 5, 0, time.UTC),
			},
		}
		for i := range recs {
			recs[i].DeriveTime()
		}
		ds := model.NewDataset(model.CanonicalFields(), recs, "mem", loaded)

		Convey("When written and read back as XLSX", func() {
			var buf bytes.Buffer
			So(WriteXLSX(&buf, ds), ShouldBeNil)

			back, err := Parse(&buf, FormatXLSX, "mem", loaded)
			So(err, ShouldBeNil)

			Convey("Then the records are unchanged", func() {
				So(back.Records, ShouldResemble, ds.Records)
				So(back.Schema, ShouldResemble, ds.Schema)
			})
		})

		Convey("When written and read back as CSV", func() {
			var buf bytes.Buffer
			So(WriteCSV(&buf, ds, true), ShouldBeNil)
			So(bytes.HasPrefix(buf.Bytes(), utf8BOM), ShouldBeTrue)

			back, err := Parse(&buf, FormatCSV, "mem", loaded)
			So(err, ShouldBeNil)
			So(back.Records, ShouldResemble, ds.Records)
		})
	})

	Convey("Given a decoded file with an extra column", t, func() {
		ds, err := Parse(strings.NewReader(sampleCSV), FormatCSV, "day.csv", time.Now())
		So(err, ShouldBeNil)

		Convey("When exported as CSV", func() {
			var buf bytes.Buffer
			So(WriteCSV(&buf, ds, false), ShouldBeNil)

			Convey("Then the source layout is kept", func() {
				header := strings.SplitN(buf.String(), "\n", 2)[0]
				So(header, ShouldEqual, "玩家id,对局id,昵称,对局时间,是否获胜,是否翻盘,段位,KDA,备注,结束时间")
				So(buf.String(), ShouldContainSubstring, "p1,m1,阿狸,900,1,1,黄金,2.5,first,2025-01-01 12:00:00")
			})
		})
	})
}

func TestFormatFromName(t *testing.T) {
	Convey("Given file names", t, func() {
		f, err := FormatFromName("data/dayresult_0101.XLSX")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatXLSX)

		f, err = FormatFromName("export.csv")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatCSV)

		_, err = FormatFromName("notes.txt")
		So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
	})
}
