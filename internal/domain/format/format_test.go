package format

import (
	"testing"
	"time"

	"github.com/okian/bassboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	Convey("Given numbers in each state", t, func() {
		So(Number(model.Num(14.5), 2), ShouldEqual, "14.50")
		So(Length(model.Num(3)), ShouldEqual, "3.00")
		So(Integer(model.Num(42)), ShouldEqual, "42")
		So(Number(model.Num(1.005), -1), ShouldEqual, "1")

		Convey("Then absent and unparseable both render the placeholder", func() {
			So(Number(model.Number{}, 2), ShouldEqual, Placeholder)
			So(Number(model.BadNumber("n/a"), 2), ShouldEqual, Placeholder)
		})
	})
}

func TestDate(t *testing.T) {
	Convey("Given a valid date", t, func() {
		So(Date(model.On(2024, time.March, 2)), ShouldEqual, "Mar 2, 2024")
	})

	Convey("Given an invalid date", t, func() {
		Convey("Then the original string is preserved", func() {
			So(Date(model.BadDate("2024-13-40")), ShouldEqual, "2024-13-40")
		})
	})

	Convey("Given no date", t, func() {
		So(Date(model.Date{}), ShouldEqual, Placeholder)
	})
}

func TestTextAndFish(t *testing.T) {
	Convey("Given text and fish lists", t, func() {
		So(Text("  "), ShouldEqual, Placeholder)
		So(Text("Ann"), ShouldEqual, "Ann")
		So(Fish(nil), ShouldEqual, Placeholder)
		So(Fish([]float64{14.5, 16}), ShouldEqual, "14.50 16.00")
	})
}
