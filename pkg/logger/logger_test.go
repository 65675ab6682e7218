package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Named("loader").Info(ctx, "dataset loaded",
				Int("rows", 12),
				String("team", "Brazil"),
				Error(errors.New("boom")),
			)

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)

			Convey("Then the record carries every field", func() {
				So(rec["msg"], ShouldEqual, "dataset loaded")
				So(rec["rows"], ShouldEqual, 12.0)
				So(rec["team"], ShouldEqual, "Brazil")
				So(rec["logger"], ShouldEqual, "loader")
				So(rec["request_id"], ShouldEqual, "req-42")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above debug", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")
			Get().Info(context.Background(), "hidden too")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known levels are accepted case-insensitively", func() {
			for _, lvl := range []string{"debug", "INFO", "", "warn", "Warning", "error"} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("And unknown levels are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a context without a request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")

		Convey("When one is attached", func() {
			ctx := WithRequestID(context.Background(), "abc")
			So(RequestID(ctx), ShouldEqual, "abc")
		})
	})
}
