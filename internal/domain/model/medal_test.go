package model_test

import (
	"testing"

	"github.com/okian/medaldash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsers(t *testing.T) {
	Convey("Given raw cells from a source file", t, func() {
		Convey("Then podium medals parse case-insensitively", func() {
			So(model.ParseMedal("Gold"), ShouldEqual, model.MedalGold)
			So(model.ParseMedal(" silver "), ShouldEqual, model.MedalSilver)
			So(model.ParseMedal("BRONZE"), ShouldEqual, model.MedalBronze)
		})

		Convey("And missing medals collapse to None", func() {
			for _, raw := range []string{"", "NA", "NaN", "No medal"} {
				m := model.ParseMedal(raw)
				So(m, ShouldEqual, model.MedalNone)
				So(m.Counted(), ShouldBeFalse)
			}
		})

		Convey("And sex codes map to the enum", func() {
			So(model.ParseSex("M"), ShouldEqual, model.SexMale)
			So(model.ParseSex("female"), ShouldEqual, model.SexFemale)
			So(model.ParseSex("?"), ShouldEqual, model.SexUnknown)
		})

		Convey("And seasons are normalized", func() {
			So(model.ParseSeason("summer"), ShouldEqual, model.SeasonSummer)
			So(model.ParseSeason("Winter"), ShouldEqual, model.SeasonWinter)
		})
	})
}

func TestMedalKey(t *testing.T) {
	Convey("Given two athletes sharing a relay medal", t, func() {
		a := model.MedalRecord{Year: 2016, Sport: "Football", Event: "Men's Football", Name: "A", Medal: model.MedalGold}
		b := a
		b.Name = "B"

		Convey("Then their medal keys are identical", func() {
			So(a.MedalKey(), ShouldEqual, b.MedalKey())
		})

		Convey("And a different medal in the same event has another key", func() {
			c := a
			c.Medal = model.MedalSilver
			So(c.MedalKey(), ShouldNotEqual, a.MedalKey())
		})

		Convey("And fields cannot bleed into each other", func() {
			x := model.MedalRecord{Year: 2016, Sport: "Sailing 4", Event: "70", Medal: model.MedalGold}
			y := model.MedalRecord{Year: 2016, Sport: "Sailing", Event: "470", Medal: model.MedalGold}
			So(x.MedalKey(), ShouldNotEqual, y.MedalKey())
		})
	})
}
