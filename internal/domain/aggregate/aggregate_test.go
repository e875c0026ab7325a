package aggregate_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)

type row struct {
	player, match string
	dur           float64
	win, comeback bool
	rank, tier    string
	kda, power    *float64
	own, enemy    *float64
	end           time.Time
}

func dataset(fields []model.Field, rows ...row) *model.Dataset {
	recs := make([]model.MatchRecord, len(rows))
	for i, r := range rows {
		recs[i] = model.MatchRecord{
			Seq: i, PlayerID: r.player, MatchID: r.match, DurationSeconds: r.dur,
			IsWin: r.win, IsComeback: r.comeback, Rank: r.rank, NewcomerTier: r.tier,
			KDA: r.kda, PowerDiff: r.power, OwnLevel5m: r.own, EnemyLevel5m: r.enemy,
			EndTime: r.end,
		}
		recs[i].DeriveTime()
	}
	return model.NewDataset(fields, recs, "test", t0)
}

func fields(cols ...model.Column) []model.Field {
	out := []model.Field{}
	for _, c := range cols {
		out = append(out, model.Field{Name: c.Header(), Column: c, Extra: -1})
	}
	return out
}

// twoMatches is 2 matches, 6 player rows, 3 wins.
func twoMatches() *model.Dataset {
	return dataset(model.CanonicalFields(),
		row{player: "a", match: "m1", dur: 600, win: true, rank: "黄金", kda: model.Float(3), power: model.Float(-100), end: t0},
		row{player: "b", match: "m1", dur: 600, win: true, rank: "白银", kda: model.Float(1), power: model.Float(-100), end: t0},
		row{player: "c", match: "m1", dur: 600, win: false, rank: "", kda: model.Float(0.5), power: model.Float(100), end: t0},
		row{player: "a", match: "m2", dur: 900, win: false, comeback: true, rank: "铂金", kda: model.Float(2), power: model.Float(300), own: model.Float(5), enemy: model.Float(7), end: t0.Add(time.Hour)},
		row{player: "d", match: "m2", dur: 900, win: true, comeback: true, rank: "黄金", kda: nil, power: model.Float(-300), own: model.Float(6), enemy: model.Float(7), end: t0.Add(time.Hour)},
		row{player: "e", match: "m2", dur: 900, win: false, comeback: true, rank: "黄金", kda: model.Float(12), power: nil, end: t0.Add(25 * time.Hour)},
	)
}

func TestSummary(t *testing.T) {
	convey.Convey("Given 2 matches with 6 player rows and 3 wins", t, func() {
		s := aggregate.Summarize(twoMatches())

		convey.Convey("Then the headline figures are derived", func() {
			convey.So(s.Rows, convey.ShouldEqual, 6)
			convey.So(s.Players, convey.ShouldEqual, 5)
			convey.So(s.Matches, convey.ShouldEqual, 2)
			convey.So(s.WinRate, convey.ShouldEqual, 50.0)
			convey.So(s.Balance, convey.ShouldEqual, aggregate.BalanceEven)
			convey.So(s.MeanDuration, convey.ShouldEqual, 750.0)
			convey.So(*s.DurationExcess, convey.ShouldEqual, 30.0)
			convey.So(s.MinDuration, convey.ShouldEqual, 600.0)
			convey.So(s.MaxDuration, convey.ShouldEqual, 900.0)
			convey.So(*s.MeanKDA, convey.ShouldAlmostEqual, 3.7)
			convey.So(s.FirstEnd, convey.ShouldEqual, t0)
			convey.So(s.LastEnd, convey.ShouldEqual, t0.Add(25*time.Hour))
			convey.So(s.ComebackMatches, convey.ShouldEqual, 1)
			convey.So(s.ComebackRate, convey.ShouldEqual, 50.0)
		})
	})

	convey.Convey("Given win rates around the balance band", t, func() {
		convey.So(aggregate.WinRateBalance(48), convey.ShouldEqual, aggregate.BalanceEven)
		convey.So(aggregate.WinRateBalance(52), convey.ShouldEqual, aggregate.BalanceEven)
		convey.So(aggregate.WinRateBalance(52.1), convey.ShouldEqual, aggregate.BalanceHigh)
		convey.So(aggregate.WinRateBalance(47.9), convey.ShouldEqual, aggregate.BalanceLow)
		convey.So(aggregate.DurationExcess(720), convey.ShouldBeNil)
	})
}

func TestTrends(t *testing.T) {
	convey.Convey("Given a two-day dataset", t, func() {
		ds := twoMatches()

		convey.Convey("When counting matches per hour", func() {
			hours := aggregate.HourlyMatchCounts(ds)

			convey.Convey("Then each hour counts distinct matches", func() {
				convey.So(hours, convey.ShouldResemble, []aggregate.HourCount{
					{Hour: 20, Matches: 1},
					{Hour: 21, Matches: 1},
				})
			})
		})

		convey.Convey("When counting players per day", func() {
			days := aggregate.DailyActivePlayers(ds)
			convey.So(days, convey.ShouldResemble, []aggregate.DayCount{
				{Date: "2025-01-01", Players: 4},
				{Date: "2025-01-02", Players: 1},
			})
		})

		convey.Convey("When computing the cumulative win rate", func() {
			points := aggregate.CumulativeWinRate(ds)

			convey.Convey("Then every point is a percentage", func() {
				convey.So(len(points), convey.ShouldEqual, 6)
				for _, p := range points {
					convey.So(p.WinRate, convey.ShouldBeBetweenOrEqual, 0.0, 100.0)
				}
			})

			convey.Convey("Then the last point is the overall win rate", func() {
				convey.So(points[5].WinRate, convey.ShouldEqual, 50.0)
				convey.So(points[0].WinRate, convey.ShouldEqual, 100.0)
				convey.So(points[2].WinRate, convey.ShouldAlmostEqual, 200.0/3)
			})
		})
	})

	convey.Convey("Given rows sharing an end time", t, func() {
		ds := dataset(model.CanonicalFields(),
			row{player: "a", match: "m1", win: false, end: t0},
			row{player: "b", match: "m1", win: true, end: t0},
		)
		points := aggregate.CumulativeWinRate(ds)

		convey.Convey("Then source row order breaks the tie", func() {
			convey.So(points[0].WinRate, convey.ShouldEqual, 0.0)
			convey.So(points[1].WinRate, convey.ShouldEqual, 50.0)
		})
	})
}

func TestDistributions(t *testing.T) {
	convey.Convey("Given players with several records", t, func() {
		ds := twoMatches()

		convey.Convey("When counting ranks", func() {
			ranks := aggregate.RankDistribution(ds)

			convey.Convey("Then each player counts once at their latest rank", func() {
				convey.So(ranks, convey.ShouldResemble, []aggregate.CategoryCount{
					{Name: "黄金", Count: 2},
					{Name: "未知", Count: 1},
					{Name: "白银", Count: 1},
					{Name: "铂金", Count: 1},
				})
			})

			convey.Convey("Then the counts sum to the distinct players", func() {
				total := 0
				for _, r := range ranks {
					total += r.Count
				}
				convey.So(total, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the newcomer column is absent", func() {
			convey.So(aggregate.NewcomerDistribution(ds.WithRecords(ds.Records)), convey.ShouldNotBeNil)
			noTier := dataset(fields(model.ColPlayerID, model.ColRank), row{player: "a", tier: "x"})
			convey.So(aggregate.NewcomerDistribution(noTier), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given two records of one player at the same time", t, func() {
		ds := dataset(fields(model.ColPlayerID, model.ColRank),
			row{player: "a", rank: "青铜", end: t0},
			row{player: "a", rank: "白银", end: t0},
		)
		convey.So(aggregate.RankDistribution(ds), convey.ShouldResemble, []aggregate.CategoryCount{{Name: "白银", Count: 1}})
		convey.So(aggregate.Ranks(ds), convey.ShouldResemble, []string{"白银", "青铜"})
	})
}

func TestHeatmap(t *testing.T) {
	convey.Convey("Given KDA values per rank", t, func() {
		ds := twoMatches()

		convey.Convey("When binning with the defaults", func() {
			h := aggregate.KDARankHeatmap(ds, aggregate.DefaultHeatmapParams())

			convey.Convey("Then out-of-range and missing KDA rows are dropped", func() {
				convey.So(h.RowLabel, convey.ShouldEqual, "段位")
				convey.So(len(h.Bins), convey.ShouldEqual, 10)
				convey.So(h.Rows, convey.ShouldResemble, []string{"未知", "白银", "铂金", "黄金"})
				total := 0
				for _, r := range h.Counts {
					for _, n := range r {
						total += n
					}
				}
				convey.So(total, convey.ShouldEqual, 4)
				convey.So(h.Counts[3][3], convey.ShouldEqual, 1)
				convey.So(h.Max, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the upper bound is hit exactly", func() {
			h := aggregate.KDARankHeatmap(ds, aggregate.HeatmapParams{Bins: 5, Min: 0, Max: 3})
			convey.So(h.Counts[len(h.Rows)-1][4], convey.ShouldEqual, 1)
		})

		convey.Convey("When the range is inverted", func() {
			h := aggregate.KDARankHeatmap(ds, aggregate.HeatmapParams{Bins: 10, Min: 5, Max: 5})
			convey.So(h.Empty(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given no rank but a newcomer tier", t, func() {
		ds := dataset(fields(model.ColPlayerID, model.ColNewcomerTier, model.ColKDA),
			row{player: "a", tier: "新手", kda: model.Float(1)},
		)
		h := aggregate.KDARankHeatmap(ds, aggregate.DefaultHeatmapParams())
		convey.So(h.RowLabel, convey.ShouldEqual, "新人类型")
		convey.So(h.Rows, convey.ShouldResemble, []string{"新手"})
	})
}

func TestMatchAnalysis(t *testing.T) {
	convey.Convey("Given one comeback row of 900s and three normal rows of 600s", t, func() {
		ds := dataset(model.CanonicalFields(),
			row{player: "a", match: "m1", dur: 900, comeback: true, power: model.Float(-500), own: model.Float(5), enemy: model.Float(6.5)},
			row{player: "b", match: "m2", dur: 600},
			row{player: "c", match: "m2", dur: 600},
			row{player: "d", match: "m3", dur: 600},
		)
		st := aggregate.Comebacks(ds)

		convey.Convey("Then the duration delta is +300s", func() {
			convey.So(st.MeanDurationComeback, convey.ShouldEqual, 900.0)
			convey.So(st.MeanDurationNormal, convey.ShouldEqual, 600.0)
			convey.So(st.DurationDelta, convey.ShouldEqual, 300.0)
		})

		convey.Convey("Then match counts are distinct", func() {
			convey.So(st.ComebackMatches, convey.ShouldEqual, 1)
			convey.So(st.TotalMatches, convey.ShouldEqual, 3)
			convey.So(st.ComebackRate, convey.ShouldAlmostEqual, 100.0/3)
		})

		convey.Convey("Then the optional means are present", func() {
			convey.So(*st.MeanPowerDiff, convey.ShouldEqual, -500.0)
			convey.So(*st.MeanLevelGap, convey.ShouldEqual, 1.5)
		})
	})

	convey.Convey("Given power differences", t, func() {
		pd := aggregate.WinRateByPowerDiff(twoMatches())

		convey.Convey("Then ten bins cover the observed range", func() {
			convey.So(len(pd), convey.ShouldEqual, 10)
			convey.So(pd[0].Lower, convey.ShouldEqual, -300.0)
			convey.So(pd[9].Upper, convey.ShouldEqual, 300.0)
			convey.So(pd[0].Count, convey.ShouldEqual, 1)
			convey.So(pd[0].WinRate, convey.ShouldEqual, 100.0)
			convey.So(pd[9].Count, convey.ShouldEqual, 1)
			convey.So(pd[9].WinRate, convey.ShouldEqual, 0.0)
			convey.So(pd[1].Count, convey.ShouldEqual, 0)
			convey.So(pd[1].WinRate, convey.ShouldEqual, 0.0)
		})
	})

	convey.Convey("Given a single power difference value", t, func() {
		ds := dataset(fields(model.ColPlayerID, model.ColPowerDiff), row{player: "a", win: true, power: model.Float(0)})
		pd := aggregate.WinRateByPowerDiff(ds)
		total := 0
		for _, b := range pd {
			total += b.Count
		}
		convey.So(total, convey.ShouldEqual, 1)
		convey.So(pd[0].Lower, convey.ShouldBeLessThan, 0.0)
	})

	convey.Convey("Given match durations", t, func() {
		h := aggregate.DurationHistogram(twoMatches(), 0)
		convey.So(len(h.Bins), convey.ShouldEqual, aggregate.DefaultDurationBins)
		convey.So(h.Mean, convey.ShouldEqual, 750.0)
		convey.So(h.Bins[0].Count, convey.ShouldEqual, 3)
		convey.So(h.Bins[29].Count, convey.ShouldEqual, 3)
	})
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

func TestExtremeValues(t *testing.T) {
	convey.Convey("Given finite values near the float64 limits", t, func() {
		ds := dataset(model.CanonicalFields(),
			row{player: "a", match: "m1", dur: 0, win: true, comeback: true, power: model.Float(-1e308), own: model.Float(-1e308), enemy: model.Float(1e308), end: t0},
			row{player: "b", match: "m1", dur: 1.7e308, win: false, comeback: true, power: model.Float(1e308), end: t0},
			row{player: "c", match: "m2", dur: 1.7e308, win: true, power: model.Float(0), end: t0},
		)

		convey.Convey("Then power difference bins stay finite and hold every row", func() {
			pd := aggregate.WinRateByPowerDiff(ds)
			convey.So(len(pd), convey.ShouldEqual, aggregate.PowerDiffBins)
			convey.So(pd[0].Lower, convey.ShouldEqual, -1e308)
			convey.So(pd[len(pd)-1].Upper, convey.ShouldEqual, 1e308)
			total := 0
			for _, b := range pd {
				convey.So(finite(b.Lower) && finite(b.Upper), convey.ShouldBeTrue)
				total += b.Count
			}
			convey.So(total, convey.ShouldEqual, 3)
			convey.So(pd[0].Count, convey.ShouldEqual, 1)
			convey.So(pd[len(pd)-1].Count, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the duration histogram and means stay finite", func() {
			h := aggregate.DurationHistogram(ds, 0)
			total := 0
			for _, b := range h.Bins {
				convey.So(finite(b.Lower) && finite(b.Upper), convey.ShouldBeTrue)
				total += b.Count
			}
			convey.So(total, convey.ShouldEqual, 3)
			convey.So(finite(h.Mean), convey.ShouldBeTrue)
			convey.So(h.Mean, convey.ShouldBeGreaterThan, 1e308)

			s := aggregate.Summarize(ds)
			convey.So(finite(s.MeanDuration), convey.ShouldBeTrue)
			convey.So(s.DurationExcess, convey.ShouldNotBeNil)
		})

		convey.Convey("Then an overflowing level gap counts as absent", func() {
			c := aggregate.Comebacks(ds)
			convey.So(c.MeanLevelGap, convey.ShouldBeNil)
			convey.So(c.MeanPowerDiff, convey.ShouldNotBeNil)
			convey.So(*c.MeanPowerDiff, convey.ShouldEqual, 0.0)
			convey.So(finite(c.MeanDurationComeback), convey.ShouldBeTrue)
		})
	})
}

func TestEmptyDataset(t *testing.T) {
	convey.Convey("Given an empty dataset", t, func() {
		for _, ds := range []*model.Dataset{nil, model.Empty(), dataset(model.CanonicalFields())} {
			convey.So(aggregate.HourlyMatchCounts(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.DailyActivePlayers(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.CumulativeWinRate(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.RankDistribution(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.NewcomerDistribution(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.KDARankHeatmap(ds, aggregate.DefaultHeatmapParams()).Empty(), convey.ShouldBeTrue)
			convey.So(aggregate.WinRateByPowerDiff(ds), convey.ShouldBeEmpty)
			convey.So(aggregate.Comebacks(ds), convey.ShouldResemble, aggregate.ComebackStats{})
			convey.So(aggregate.DurationHistogram(ds, 30).Bins, convey.ShouldBeEmpty)
			convey.So(aggregate.Summarize(ds), convey.ShouldResemble, aggregate.Summary{})
		}
	})
}
