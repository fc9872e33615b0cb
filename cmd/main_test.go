package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/bassboard/internal/adapters/http/live"
	"github.com/okian/bassboard/internal/adapters/source"
	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/config"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/testapi"
	"github.com/okian/bassboard/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.New()
	cfg.APIBase = baseURL
	cfg.Addr = "127.0.0.1:0"
	cfg.RequestTimeoutMS = 2000
	return cfg
}

func TestWiring(t *testing.T) {
	_ = logger.Init(logger.WithWriter(io.Discard))

	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then the enabled tabs parse in order", func() {
			tabs, def, err := enabledTabs(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(tabs, convey.ShouldResemble, model.AllTabs)
			convey.So(def, convey.ShouldEqual, model.TabTotal)
		})

		convey.Convey("Then an unknown tab is rejected", func() {
			cfg.Tabs = []string{"total", "day3"}
			_, _, err := enabledTabs(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then an unknown tab action is rejected", func() {
			cfg.TabActions = map[string]string{"weekly": "weekly"}
			_, err := newClient(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then a service can be built", func() {
			svc, err := newService(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Tabs(), convey.ShouldResemble, model.AllTabs)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestQueries(t *testing.T) {
	_ = logger.Init(logger.WithWriter(io.Discard))

	convey.Convey("Given a running test API", t, func() {
		api := testapi.NewServer(testapi.Config{Events: 2, Anglers: 4}, testapi.WithLogger(logger.Nop()))
		srv := httptest.NewServer(api)
		defer srv.Close()
		cfg := testConfig(srv.URL)
		first := api.Dataset().Events[0]
		ctx := context.Background()

		convey.Convey("When the events are printed", func() {
			var out bytes.Buffer
			err := query(ctx, cfg, func(ctx context.Context, c *source.Client) error {
				events, err := c.Events(ctx)
				printEvents(&out, events)
				return err
			})

			convey.Convey("Then every event is listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, first.Name)
				convey.So(out.String(), convey.ShouldContainSubstring, first.ID)
				convey.So(out.String(), convey.ShouldContainSubstring, "2 events")
			})
		})

		convey.Convey("When a board is printed", func() {
			var out bytes.Buffer
			err := query(ctx, cfg, func(ctx context.Context, c *source.Client) error {
				board, err := c.Leaderboard(ctx, first.ID, model.TabDay1)
				printBoard(&out, board)
				return err
			})

			convey.Convey("Then the anglers are listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Day 1")
				convey.So(out.String(), convey.ShouldContainSubstring, first.Standings(1)[0].Name)
				convey.So(out.String(), convey.ShouldContainSubstring, "4 anglers")
			})
		})
	})
}

func TestHandler(t *testing.T) {
	_ = logger.Init(logger.WithWriter(io.Discard))

	convey.Convey("Given a started service behind the HTTP handler", t, func() {
		api := testapi.NewServer(testapi.Config{Events: 2, Anglers: 3}, testapi.WithLogger(logger.Nop()))
		upstream := httptest.NewServer(api)
		defer upstream.Close()
		cfg := testConfig(upstream.URL)

		hub := live.New(live.WithLogger(logger.Nop()))
		defer hub.Close()
		svc, err := newService(cfg, service.WithSink(hub))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()
		convey.So(svc.LoadEvents(context.Background()), convey.ShouldBeNil)

		h := newHandler(cfg, svc, hub)
		do := func(method, path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
			return rec
		}

		convey.Convey("Then the events are listed", func() {
			rec := do(http.MethodGet, "/api/events")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			var body struct {
				Count int `json:"count"`
			}
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body.Count, convey.ShouldEqual, 2)
		})

		convey.Convey("Then selecting an event and waiting returns its rows", func() {
			id := api.Dataset().Events[0].ID
			rec := do(http.MethodPost, "/api/events/"+id+"/select?wait=true")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			var body struct {
				View struct {
					EventID string            `json:"event_id"`
					Rows    []json.RawMessage `json:"rows"`
				} `json:"view"`
			}
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body.View.EventID, convey.ShouldEqual, id)
			convey.So(len(body.View.Rows), convey.ShouldEqual, 3)
		})

		convey.Convey("Then the docs and health routes are mounted", func() {
			convey.So(do(http.MethodGet, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestServe(t *testing.T) {
	_ = logger.Init(logger.WithWriter(io.Discard))

	convey.Convey("Given the serve loop", t, func() {
		api := testapi.NewServer(testapi.Config{Events: 1}, testapi.WithLogger(logger.Nop()))
		upstream := httptest.NewServer(api)
		defer upstream.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		convey.Convey("Then it stops cleanly when the context ends", func() {
			convey.So(serve(ctx, testConfig(upstream.URL)), convey.ShouldBeNil)
			convey.So(api.Requests(), convey.ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
