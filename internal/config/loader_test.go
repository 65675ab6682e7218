package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/medaldash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8050")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "data/olympics_dataset.csv")
				convey.So(cfg.ForecastYears, convey.ShouldResemble, []int{2028, 2032})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MEDALDASH_ADDR", ":8080")
			_ = os.Setenv("MEDALDASH_TOP_N", "5")
			_ = os.Setenv("MEDALDASH_TEAM", "Argentina")
			_ = os.Setenv("MEDALDASH_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("MEDALDASH_FORECAST_YEARS", "2028,2032,2036")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
				convey.So(cfg.Team, convey.ShouldEqual, "Argentina")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.ForecastYears, convey.ShouldResemble, []int{2028, 2032, 2036})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
dataset_path: "/srv/medals.db"
recent_window_years: 12
forecast_years: [2036]
redis_addr: "localhost:6379"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEDALDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "/srv/medals.db")
				convey.So(cfg.RecentWindowYears, convey.ShouldEqual, 12)
				convey.So(cfg.ForecastYears, convey.ShouldResemble, []int{2036})
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.TopN, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
top_n: 7
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEDALDASH_CONFIG", tmpFile)
			_ = os.Setenv("MEDALDASH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopN, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEDALDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MEDALDASH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MEDALDASH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MEDALDASH_TOP_N", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, key := range []string{
		"MEDALDASH_CONFIG",
		"MEDALDASH_ADDR",
		"MEDALDASH_TOP_N",
		"MEDALDASH_TEAM",
		"MEDALDASH_RATE_LIMIT_RPS",
		"MEDALDASH_FORECAST_YEARS",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "medaldash-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
