package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/charts"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func decodeSize(b []byte) (int, int, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	return cfg.Width, cfg.Height, err
}

func TestRender(t *testing.T) {
	Convey("Given a renderer of 640x300", t, func() {
		r := New(WithSize(640, 300))
		ctx := context.Background()

		Convey("When rendering a line chart", func() {
			var buf bytes.Buffer
			c := charts.ForMedalsByYear([]analytics.YearCount{
				{Year: 1996, City: "Atlanta", Count: 15},
				{Year: 2000, City: "Sydney", Count: 12},
				{Year: 2004, City: "Athina", Count: 10},
			})
			So(r.Render(ctx, c, &buf), ShouldBeNil)

			Convey("Then a PNG of the configured size is written", func() {
				w, h, err := decodeSize(buf.Bytes())
				So(err, ShouldBeNil)
				So(w, ShouldEqual, 640)
				So(h, ShouldEqual, 300)
			})
		})

		Convey("When rendering a single point line", func() {
			var buf bytes.Buffer
			c := charts.ForMedalsByYear([]analytics.YearCount{{Year: 2016, Count: 19}})
			So(r.Render(ctx, c, &buf), ShouldBeNil)
			_, _, err := decodeSize(buf.Bytes())
			So(err, ShouldBeNil)
		})

		Convey("When rendering the forecast with its dashed projection", func() {
			var buf bytes.Buffer
			f := analytics.FitForecast([]analytics.YearCount{{Year: 2016, Count: 19}, {Year: 2020, Count: 21}}, []int{2028, 2032})
			So(r.Render(ctx, charts.ForForecast(f), &buf), ShouldBeNil)
			So(buf.Len(), ShouldBeGreaterThan, 0)
		})

		Convey("When rendering a grouped bar chart with negative values", func() {
			var buf bytes.Buffer
			c := charts.ForGrowthBySport([]analytics.SportGrowth{
				{Sport: "Judo", Growth: 3},
				{Sport: "Sailing", Growth: -2},
			})
			So(r.Render(ctx, c, &buf), ShouldBeNil)
			w, _, err := decodeSize(buf.Bytes())
			So(err, ShouldBeNil)
			So(w, ShouldEqual, 640)
		})

		Convey("When rendering an empty chart", func() {
			var buf bytes.Buffer
			So(r.Render(ctx, charts.ForTopAthletes(nil), &buf), ShouldBeNil)

			Convey("Then a placeholder image is still produced", func() {
				w, h, err := decodeSize(buf.Bytes())
				So(err, ShouldBeNil)
				So(w, ShouldEqual, 640)
				So(h, ShouldEqual, 300)
			})
		})

		Convey("When the writer fails", func() {
			c := charts.ForMedalsBySex([]analytics.LabelCount{{Label: "Male", Count: 1}})
			So(r.Render(ctx, c, failingWriter{}), ShouldNotBeNil)
		})
	})

	Convey("Given the blank fallback", t, func() {
		var buf bytes.Buffer
		So(New().Blank(&buf), ShouldBeNil)
		w, h, err := decodeSize(buf.Bytes())
		So(err, ShouldBeNil)
		So(w, ShouldEqual, 960)
		So(h, ShouldEqual, 420)
	})
}
