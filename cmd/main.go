package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/medaldash/internal/adapters/http/api"
	"github.com/okian/medaldash/internal/adapters/http/site"
	"github.com/okian/medaldash/internal/adapters/http/swagger"
	"github.com/okian/medaldash/internal/adapters/render"
	"github.com/okian/medaldash/internal/adapters/source"
	"github.com/okian/medaldash/internal/adapters/usage"
	app "github.com/okian/medaldash/internal/app"
	"github.com/okian/medaldash/internal/config"
	"github.com/okian/medaldash/internal/domain/medals"
	"github.com/okian/medaldash/pkg/logger"
	"github.com/okian/medaldash/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	redisPingTimeout          = 2 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// The dataset is loaded once; any failure is fatal.
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to load dataset", logger.String("path", cfg.DatasetPath), logger.Error(err))
		return
	}

	recorder, closeRecorder := newUsageRecorder(ctx, cfg)
	defer closeRecorder()

	svc := app.New(
		app.WithLogger(loggerInstance.Named("service")),
		app.WithDataset(ds),
		app.WithTopN(cfg.TopN),
		app.WithRecentWindow(cfg.RecentWindowYears),
		app.WithForecastYears(cfg.ForecastYears),
		app.WithUsageRecorder(recorder),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// loadDataset reads the configured source and builds the working dataset.
func loadDataset(ctx context.Context, cfg *config.Config) (*medals.Dataset, error) {
	start := time.Now()

	src, err := source.Open(cfg.DatasetPath, cfg.DatasetTable)
	if err != nil {
		return nil, err
	}
	raw, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	ds := medals.Build(ctx, raw, medals.WithTeam(cfg.Team), medals.WithSeason(cfg.Season))

	elapsed := time.Since(start)
	metrics.UpdateDatasetLoadDuration(float64(elapsed.Microseconds()) / 1000)
	st := ds.Stats()
	logger.Get().Info(ctx, "dataset loaded",
		logger.String("source", src.Name()),
		logger.Int("rawRows", st.RawRows),
		logger.Int("keptRows", st.KeptRows),
		logger.Int("uniqueRows", st.UniqueRows),
		logger.Int("sports", len(ds.Sports())),
		logger.Duration("took", elapsed),
	)
	return ds, nil
}

// newUsageRecorder returns the Redis recorder when redis_addr is set and
// reachable, otherwise the in-memory one. The returned func releases it.
func newUsageRecorder(ctx context.Context, cfg *config.Config) (usage.Recorder, func()) {
	if cfg.RedisAddr == "" {
		return usage.NewMemory(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		logger.Get().Warn(ctx, "redis unreachable; counting usage in memory",
			logger.String("addr", cfg.RedisAddr),
			logger.Error(err),
		)
		_ = rdb.Close()
		return usage.NewMemory(), func() {}
	}
	return usage.NewRedis(rdb, usage.WithPrefix(cfg.RedisPrefix)), func() { _ = rdb.Close() }
}

// newMux registers every route: page, API, images, docs and metrics.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	renderer := render.New(
		render.WithSize(cfg.ChartWidth, cfg.ChartHeight),
		render.WithLogger(logger.Named("render")),
	)

	var opts []api.ServerOption
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, api.WithRateLimiter(api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}
	api.NewServer(svc, renderer, svc, opts...).Register(ctx, mux)

	site.Register(ctx, mux, site.NewHandler(svc,
		site.WithTitle("Brasil nas Olimpíadas: Dashboard Interativo", cfg.Team+" · "+cfg.Season),
	))
	swagger.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
