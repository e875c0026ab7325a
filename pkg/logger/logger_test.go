package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
	Named("test").Info(ctx, "named message")
}

func TestLoggerOptions(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Format: "json", Output: &buf}), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with a request id in the context", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Get().Info(ctx, "dataset loaded",
				Int("rows", 6),
				Bool("cached", false),
				Duration("took", 1500*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the entry carries the fields and the request id", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "dataset loaded")
				So(entry["request_id"], ShouldEqual, "req-42")
				So(entry["rows"], ShouldEqual, float64(6))
				So(entry["cached"], ShouldEqual, false)
				So(entry["took"], ShouldEqual, "1.5s")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			So(SetLevelString("info"), ShouldBeNil)

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When logging through a named logger", func() {
			Named("loader").Warn(context.Background(), "no data file")

			Convey("Then the logger name is attached", func() {
				So(buf.String(), ShouldContainSubstring, `"logger":"loader"`)
			})
		})
	})

	Convey("Given an unknown format", t, func() {
		err := InitWithOptions(Options{Format: "xml"})
		defer func() { _ = Init() }()

		Convey("Then initialization fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log format")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "unknown log level"), ShouldBeTrue)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestRequestIDWithoutValue(t *testing.T) {
	Convey("A bare context carries no request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")
	})
}
