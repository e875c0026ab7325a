package api

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestContentDisposition(t *testing.T) {
	convey.Convey("Given a non-ASCII export name", t, func() {
		got := contentDisposition("魔鬼匹配_筛选数据_20250102.csv")

		convey.Convey("Then both filename forms are present", func() {
			convey.So(got, convey.ShouldStartWith, `attachment; filename="_`)
			convey.So(got, convey.ShouldContainSubstring, `_20250102.csv"`)
			convey.So(got, convey.ShouldContainSubstring, "filename*=UTF-8''%E9%AD%94")
		})
	})

	convey.Convey("Quotes never reach the header", t, func() {
		convey.So(asciiName(`a"b\c.csv`), convey.ShouldEqual, "a_b_c.csv")
	})
}

func TestOpErrors(t *testing.T) {
	convey.Convey("Given op-tagged errors", t, func() {
		cause := errors.New("boom")

		convey.So(Wrap("x", nil), convey.ShouldBeNil)
		convey.So(WrapKind("x", ErrRender, nil), convey.ShouldBeNil)

		err := WrapKind("dashboard", ErrRender, cause)
		convey.So(err.Error(), convey.ShouldEqual, "dashboard: render failed: boom")
		convey.So(errors.Is(err, ErrRender), convey.ShouldBeTrue)
		convey.So(errors.Is(err, cause), convey.ShouldBeTrue)

		nk := NewKind("chart", ErrNotFound, "%q", "radar")
		convey.So(nk.Error(), convey.ShouldEqual, `chart: not found: "radar"`)
		convey.So(errors.Is(nk, ErrNotFound), convey.ShouldBeTrue)
		convey.So(Wrap("export", cause).Error(), convey.ShouldEqual, "export: boom")
	})
}
