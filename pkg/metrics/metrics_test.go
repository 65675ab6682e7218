package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"team": "Brazil"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the collectors are registered on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.datasetRows.WithLabelValues("raw").Set(3)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_dataset_rows")
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When dataset metrics are updated", func() {
			UpdateDatasetRows("unique", 1234)
			UpdateDatasetSports(31)
			UpdateDatasetLoadDuration(12.5)

			Convey("Then gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("unique")), ShouldEqual, 1234)
				So(testutil.ToFloat64(globalManager.datasetSports), ShouldEqual, 31)
				So(testutil.ToFloat64(globalManager.datasetLoadDuration), ShouldEqual, 12.5)
			})
		})

		Convey("When counters are incremented", func() {
			before := testutil.ToFloat64(globalManager.filterSelections.WithLabelValues("Judo"))
			RecordFilterSelection("Judo")
			RecordFilterSelection("Judo")

			degenerateBefore := testutil.ToFloat64(globalManager.forecastDegenerate)
			RecordForecastDegenerate()

			Convey("Then they grow monotonically", func() {
				So(testutil.ToFloat64(globalManager.filterSelections.WithLabelValues("Judo")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.forecastDegenerate), ShouldEqual, degenerateBefore+1)
			})
		})

		Convey("When histogram and error metrics are recorded", func() {
			So(func() {
				RecordAggregationDuration("medals_by_year", 0.2)
				RecordRenderDuration("medals_by_year", 14)
				RecordRenderError("forecast")
				RecordExport()
				RecordHTTPRequest("charts", "GET", "200")
				RecordHTTPRequestDuration("charts", "GET", "200", 3)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("charts", "GET", "not_found")
				RecordRateLimited("api")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("Then GetRegistry exposes the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
