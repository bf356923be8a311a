package handicap_test

import (
	"testing"

	handicap "github.com/okian/handicap/internal/domain/handicap"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelect(t *testing.T) {
	Convey("Given the selection table", t, func() {
		cases := []struct {
			n     int
			count int
			adj   float64
		}{
			{0, 0, 0}, {1, 1, 0}, {2, 2, 0},
			{3, 1, -2.0}, {4, 1, -1.0}, {5, 1, 0},
			{6, 2, -1.0}, {7, 2, 0}, {8, 2, 0},
			{9, 3, 0}, {11, 3, 0}, {12, 4, 0}, {14, 4, 0},
			{15, 5, 0}, {16, 5, 0}, {17, 6, 0}, {18, 6, 0},
			{19, 7, 0}, {20, 8, 0}, {25, 8, 0}, {1000, 8, 0},
		}

		Convey("When looking up each boundary", func() {
			Convey("Then count and adjustment match the table", func() {
				for _, c := range cases {
					sel := handicap.Select(c.n)
					So(sel.CountToUse, ShouldEqual, c.count)
					So(sel.Adjustment, ShouldEqual, c.adj)
				}
			})
		})

		Convey("When n is negative", func() {
			sel := handicap.Select(-4)

			Convey("Then it behaves like zero", func() {
				So(sel, ShouldResemble, handicap.Selection{})
			})
		})

		Convey("When walking every n up to 40", func() {
			Convey("Then the count never exceeds n or decreases", func() {
				prev := 0
				for n := 0; n <= 40; n++ {
					sel := handicap.Select(n)
					So(sel.CountToUse, ShouldBeLessThanOrEqualTo, n)
					So(sel.CountToUse, ShouldBeGreaterThanOrEqualTo, prev)
					prev = sel.CountToUse
				}
			})
		})
	})
}
