package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() *model.Dataset {
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	recs := []model.MatchRecord{
		{PlayerID: "a", MatchID: "m1", IsWin: true, Rank: "黄金", KDA: model.Float(2), EndTime: day},
		{PlayerID: "b", MatchID: "m1", IsWin: false, Rank: "白银", KDA: model.Float(0.5), EndTime: day},
		{PlayerID: "c", MatchID: "m2", IsWin: true, Rank: "黄金", KDA: nil, EndTime: day.Add(24 * time.Hour)},
		{PlayerID: "d", MatchID: "m2", IsWin: false, Rank: "", KDA: model.Float(15), EndTime: day.Add(48 * time.Hour)},
	}
	for i := range recs {
		recs[i].Seq = i
		recs[i].DeriveTime()
	}
	return model.NewDataset(model.CanonicalFields(), recs, "test", day)
}

func ids(ds *model.Dataset) []string {
	out := []string{}
	for _, r := range ds.Records {
		out = append(out, r.PlayerID)
	}
	return out
}

func TestApply(t *testing.T) {
	Convey("Given a dataset", t, func() {
		ds := fixture()

		Convey("When the filter is empty", func() {
			out := Apply(ds, Spec{})
			So(ids(out), ShouldResemble, []string{"a", "b", "c", "d"})
		})

		Convey("When filtering by rank", func() {
			out := Apply(ds, Spec{Ranks: []string{"黄金"}})
			So(ids(out), ShouldResemble, []string{"a", "c"})
		})

		Convey("When filtering by a KDA interval", func() {
			out := Apply(ds, Spec{KDAMin: model.Float(0.5), KDAMax: model.Float(2)})

			Convey("Then bounds are inclusive and missing KDA is excluded", func() {
				So(ids(out), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When filtering by outcome", func() {
			So(ids(Apply(ds, Spec{Win: WinOnly})), ShouldResemble, []string{"a", "c"})
			So(ids(Apply(ds, Spec{Win: LossOnly})), ShouldResemble, []string{"b", "d"})
		})

		Convey("When conditions combine", func() {
			spec := Spec{Ranks: []string{"黄金", "白银"}, KDAMax: model.Float(10), Win: LossOnly}
			once := Apply(ds, spec)

			Convey("Then the result is their conjunction", func() {
				So(ids(once), ShouldResemble, []string{"b"})
			})

			Convey("Then applying twice changes nothing", func() {
				So(Apply(once, spec).Records, ShouldResemble, once.Records)
			})

			Convey("Then the source is untouched", func() {
				So(ds.Len(), ShouldEqual, 4)
				So(once.Schema, ShouldResemble, ds.Schema)
			})
		})

		Convey("When the optional columns are absent", func() {
			bare := model.NewDataset([]model.Field{{Name: "玩家id", Column: model.ColPlayerID, Extra: -1}}, ds.Records, "bare", ds.LoadedAt)
			out := Apply(bare, Spec{Ranks: []string{"青铜"}, KDAMin: model.Float(100)})

			Convey("Then those conditions are skipped", func() {
				So(out.Len(), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a nil dataset", t, func() {
		So(Apply(nil, Spec{Win: WinOnly}).IsEmpty(), ShouldBeTrue)
		So(Scope(nil, DateScope{From: "2025-01-01"}).IsEmpty(), ShouldBeTrue)
	})
}

func TestScope(t *testing.T) {
	Convey("Given a three-day dataset", t, func() {
		ds := fixture()

		Convey("When scoping to a closed range", func() {
			out := Scope(ds, DateScope{From: "2025-01-02", To: "2025-01-03"})
			So(ids(out), ShouldResemble, []string{"c", "d"})
		})

		Convey("When scoping with an open end", func() {
			out := Scope(ds, DateScope{To: "2025-01-01"})
			So(ids(out), ShouldResemble, []string{"a", "b"})
		})

		Convey("When the scope is empty", func() {
			So(Scope(ds, DateScope{}), ShouldEqual, ds)
		})

		Convey("Then the date bounds are reported", func() {
			first, last, ok := DateBounds(ds)
			So(ok, ShouldBeTrue)
			So(first, ShouldEqual, "2025-01-01")
			So(last, ShouldEqual, "2025-01-03")
		})
	})
}

func TestParseQuery(t *testing.T) {
	Convey("Given no parameters", t, func() {
		q := ParseQuery(url.Values{})

		Convey("Then every default applies", func() {
			So(q.Filter.IsZero(), ShouldBeTrue)
			So(q.Scope.IsZero(), ShouldBeTrue)
			So(q.Heatmap, ShouldResemble, aggregate.DefaultHeatmapParams())
			So(q.Values(), ShouldBeEmpty)
		})
	})

	Convey("Given a full set of parameters", t, func() {
		v := url.Values{
			"from":    {"2025-01-03"},
			"to":      {"2025-01-01"},
			"rank":    {"黄金", " ", "白银"},
			"kda_min": {"-3"},
			"kda_max": {"25"},
			"win":     {"loss"},
			"hm_bins": {"40"},
			"hm_min":  {"2"},
			"hm_max":  {"abc"},
		}
		q := ParseQuery(v)

		Convey("Then values are read and clamped", func() {
			So(q.Scope, ShouldResemble, DateScope{From: "2025-01-01", To: "2025-01-03"})
			So(q.Filter.Ranks, ShouldResemble, []string{"黄金", "白银"})
			So(*q.Filter.KDAMin, ShouldEqual, 0.0)
			So(*q.Filter.KDAMax, ShouldEqual, 20.0)
			So(q.Filter.Win, ShouldEqual, LossOnly)
			So(q.Heatmap.Bins, ShouldEqual, 20)
			So(q.Heatmap.Min, ShouldEqual, 2.0)
			So(q.Heatmap.Max, ShouldEqual, aggregate.DefaultHeatmapMax)
		})

		Convey("Then encoding and parsing again is stable", func() {
			So(ParseQuery(q.Values()), ShouldResemble, q)
		})
	})

	Convey("Given malformed dates", t, func() {
		q := ParseQuery(url.Values{"from": {"yesterday"}, "to": {"2025-13-01"}})
		So(q.Scope.IsZero(), ShouldBeTrue)
	})

	Convey("Given outcome spellings", t, func() {
		So(ParseWinState("是"), ShouldEqual, WinOnly)
		So(ParseWinState("否"), ShouldEqual, LossOnly)
		So(ParseWinState("全部"), ShouldEqual, WinAny)
		So(LossOnly.String(), ShouldEqual, "loss")
	})
}
