package config_test

import (
	"errors"
	"testing"

	"github.com/okian/bassboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ActionParam, convey.ShouldEqual, "endpoint")
			convey.So(cfg.EventIDParam, convey.ShouldEqual, "event_id")
			convey.So(cfg.EventsAction, convey.ShouldEqual, "events")
			convey.So(cfg.Tabs, convey.ShouldResemble, []string{"total", "day1", "day2", "season"})
			convey.So(cfg.DefaultTab, convey.ShouldEqual, "total")
			convey.So(cfg.LoadPolicy, convey.ShouldEqual, config.PolicyEager)
			convey.So(cfg.WholePayloadFallback, convey.ShouldBeTrue)
			convey.So(cfg.TabActions["total"], convey.ShouldEqual, "leaderboard")
			convey.So(cfg.RequestTimeout().Seconds(), convey.ShouldEqual, 15)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the default tab is not enabled", func() {
			cfg.Tabs = []string{"day1", "day2"}

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_tab")
			})
		})

		convey.Convey("When an enabled tab has no endpoint mapping", func() {
			delete(cfg.TabActions, "season")

			convey.Convey("Then validation names the tab", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"season"`)
			})
		})

		convey.Convey("When the load policy is unknown", func() {
			cfg.LoadPolicy = "sometimes"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the timeout is zero", func() {
			cfg.RequestTimeoutMS = 0

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "request_timeout_ms")
			})
		})

		convey.Convey("When there are no workers", func() {
			cfg.WorkerCount = 0

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
			})
		})
	})
}
