package handicap_test

import (
	"math"
	"testing"

	handicap "github.com/okian/handicap/internal/domain/handicap"
	. "github.com/smartystreets/goconvey/convey"
)

func indexOf(v float64) handicap.Index {
	return handicap.Index{Value: &v, Established: true}
}

func TestCourseHandicap(t *testing.T) {
	Convey("Given a Handicap Index", t, func() {
		Convey("When converting for a slope of 113", func() {
			Convey("Then the result is the rounded index", func() {
				for _, v := range []float64{0, 4.4, 4.5, 12.3, 15.0, 27.6, 36.4, -2.4, -2.5} {
					ch, ok := handicap.CourseHandicap(indexOf(v), handicap.ReferenceSlope)
					So(ok, ShouldBeTrue)
					So(ch, ShouldEqual, int(math.Round(v)))
				}
			})
		})

		Convey("When the course handicap lands exactly on a half stroke", func() {
			Convey("Then it rounds away from zero on both sides", func() {
				for v, want := range map[float64]int{0.5: 1, -0.5: -1, 1.5: 2, -1.5: -2, 0.4: 0, -0.4: 0} {
					ch, ok := handicap.CourseHandicap(indexOf(v), handicap.ReferenceSlope)
					So(ok, ShouldBeTrue)
					So(ch, ShouldEqual, want)
				}
			})

			Convey("And a scaled tie does too", func() {
				// 2.5 * 226 / 113 = 5.0; 0.25 * 226 / 113 = 0.5
				ch, _ := handicap.CourseHandicap(indexOf(0.25), 226)
				So(ch, ShouldEqual, 1)
				ch, _ = handicap.CourseHandicap(indexOf(-0.25), 226)
				So(ch, ShouldEqual, -1)
			})
		})

		Convey("When converting for a harder course", func() {
			ch, ok := handicap.CourseHandicap(indexOf(15.0), 120)

			Convey("Then strokes are scaled up", func() {
				So(ok, ShouldBeTrue)
				So(ch, ShouldEqual, 16) // 15 * 120 / 113 = 15.93
			})
		})

		Convey("When converting a plus handicap", func() {
			ch, ok := handicap.CourseHandicap(indexOf(-1.7), 140)

			Convey("Then the result stays negative", func() {
				So(ok, ShouldBeTrue)
				So(ch, ShouldEqual, -2) // -1.7 * 140 / 113 = -2.106
			})
		})

		Convey("When the index has no value", func() {
			_, ok := handicap.CourseHandicap(handicap.Index{}, 120)

			Convey("Then there is no course handicap", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the target slope is invalid", func() {
			Convey("Then there is no course handicap", func() {
				for _, s := range []float64{0, -120, math.NaN(), math.Inf(1)} {
					_, ok := handicap.CourseHandicap(indexOf(10), s)
					So(ok, ShouldBeFalse)
				}
			})
		})
	})
}

func TestEligibility(t *testing.T) {
	Convey("Given a count of windowed holes", t, func() {
		Convey("Then 53 holes are not enough and 54 are", func() {
			So(handicap.Established(53), ShouldBeFalse)
			So(handicap.Established(54), ShouldBeTrue)
			So(handicap.Established(0), ShouldBeFalse)
		})

		Convey("Then holes remaining never drops below zero", func() {
			So(handicap.HolesRemaining(0), ShouldEqual, 54)
			So(handicap.HolesRemaining(53), ShouldEqual, 1)
			So(handicap.HolesRemaining(54), ShouldEqual, 0)
			So(handicap.HolesRemaining(360), ShouldEqual, 0)
		})
	})
}
