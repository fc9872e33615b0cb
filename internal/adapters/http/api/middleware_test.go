package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		var seen *responseWriter
		handler := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			seen, _ = w.(*responseWriter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		}, "test")

		Convey("When a request is served", func() {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			Convey("Then the status is captured and passed through", func() {
				So(seen, ShouldNotBeNil)
				So(seen.statusCode, ShouldEqual, http.StatusTooManyRequests)
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(rec.Body.String(), ShouldEqual, "slow down")
			})
		})
	})

	Convey("Given error status codes", t, func() {
		Convey("Then each maps to a type and severity", func() {
			So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
			So(getErrorType(http.StatusTooManyRequests), ShouldEqual, "rate_limit")
			So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
			So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
			So(getErrorType(http.StatusOK), ShouldEqual, "unknown")

			So(getErrorSeverity(http.StatusBadGateway), ShouldEqual, "high")
			So(getErrorSeverity(http.StatusConflict), ShouldEqual, "medium")
			So(getErrorSeverity(http.StatusOK), ShouldEqual, "low")
		})
	})
}
