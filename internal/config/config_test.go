package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/medaldash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8050")
			convey.So(cfg.Team, convey.ShouldEqual, "Brazil")
			convey.So(cfg.Season, convey.ShouldEqual, "Summer")
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.RecentWindowYears, convey.ShouldEqual, 20)
			convey.So(cfg.ForecastYears, convey.ShouldResemble, []int{2028, 2032})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one invariant each", t, func() {
		cases := map[string]func(*config.Config){
			"addr":          func(c *config.Config) { c.Addr = " " },
			"dataset_path":  func(c *config.Config) { c.DatasetPath = "" },
			"team":          func(c *config.Config) { c.Team = "" },
			"season":        func(c *config.Config) { c.Season = "" },
			"top_n":         func(c *config.Config) { c.TopN = 0 },
			"recent_window": func(c *config.Config) { c.RecentWindowYears = -1 },
			"forecast":      func(c *config.Config) { c.ForecastYears = nil },
			"rps":           func(c *config.Config) { c.RateLimitRPS = -1 },
			"burst":         func(c *config.Config) { c.RateLimitRPS = 5; c.RateLimitBurst = 0 },
			"chart":         func(c *config.Config) { c.ChartWidth = 0 },
		}

		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then validation rejects "+name, func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
