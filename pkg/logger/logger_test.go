package logger

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When it is initialized with a custom writer", func() {
			var buf bytes.Buffer
			So(Init(WithWriter(&buf)), ShouldBeNil)

			Get().Info(context.Background(), "board loaded", String("event_id", "E1"), Int("rows", 3))

			Convey("Then the entry lands in that writer with its fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "board loaded")
				So(out, ShouldContainSubstring, "event_id=E1")
				So(out, ShouldContainSubstring, "rows=3")
				So(out, ShouldContainSubstring, "source=")
			})
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then info entries are suppressed", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})

		Convey("When an unknown level is given", func() {
			err := SetLevelString("verbose")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log level")
			})
		})

		Reset(func() { _ = SetLevelString("info") })
	})
}

func TestLoggerNamed(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)

		Convey("When a named logger writes a field", func() {
			Named("source").Info(context.Background(), "request", String("action", "events"))

			Convey("Then the field is grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "source.action=events")
			})
		})

		Convey("When the nop logger is used", func() {
			So(func() { Nop().Error(context.Background(), "dropped") }, ShouldNotPanic)
		})
	})
}
