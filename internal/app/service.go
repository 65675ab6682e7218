// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the dashboard page.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/okian/medaldash/internal/adapters/export"
	"github.com/okian/medaldash/internal/adapters/usage"
	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/internal/domain/medals"
	"github.com/okian/medaldash/internal/domain/model"
	"github.com/okian/medaldash/pkg/logger"
	"github.com/okian/medaldash/pkg/metrics"
)

// Sentinel errors.
var (
	ErrNoDataset    = errors.New("service has no dataset")
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownChart = errors.New("unknown chart")
)

// Summary describes the loaded dataset.
type Summary struct {
	Team       string `json:"team"`
	Season     string `json:"season"`
	RawRows    int    `json:"raw_rows"`
	KeptRows   int    `json:"kept_rows"`
	UniqueRows int    `json:"unique_rows"`
	Sports     int    `json:"sports"`
	FirstYear  int    `json:"first_year"`
	LastYear   int    `json:"last_year"`
	HostCities int    `json:"host_cities"`
}

// Service answers every dashboard query from one immutable dataset.
type Service struct {
	mu sync.RWMutex

	// Core components
	dataset *medals.Dataset
	usage   usage.Recorder

	// Configuration
	topN          int
	recentWindow  int
	forecastYears []int

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataset sets the dataset every query reads.
func WithDataset(ds *medals.Dataset) Option {
	return func(s *Service) {
		s.dataset = ds
	}
}

// WithTopN sets how many rows the rankings keep.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithRecentWindow sets the look-back of the promising-by-sex chart in years.
func WithRecentWindow(years int) Option {
	return func(s *Service) {
		if years >= 0 {
			s.recentWindow = years
		}
	}
}

// WithForecastYears sets the years the forecast projects.
func WithForecastYears(years []int) Option {
	return func(s *Service) {
		if len(years) > 0 {
			s.forecastYears = slices.Clone(years)
		}
	}
}

// WithUsageRecorder sets where filter selections are counted.
func WithUsageRecorder(r usage.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.usage = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topN:          10,
		recentWindow:  20,
		forecastYears: []int{2028, 2032},
		usage:         usage.NewMemory(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start publishes the dataset gauges and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.dataset == nil {
		return ErrNoDataset
	}

	st := s.dataset.Stats()
	metrics.UpdateDatasetRows("raw", st.RawRows)
	metrics.UpdateDatasetRows("kept", st.KeptRows)
	metrics.UpdateDatasetRows("unique", st.UniqueRows)
	metrics.UpdateDatasetSports(len(s.dataset.Sports()))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "medal dashboard service started",
		logger.String("team", s.dataset.Team()),
		logger.String("season", string(s.dataset.Season())),
		logger.Int("medals", s.dataset.Len()),
		logger.Int("sports", len(s.dataset.Sports())),
		logger.Int("topN", s.topN),
		logger.Int("recentWindow", s.recentWindow),
		logger.String("usage", s.usage.Name()),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "medal dashboard service stopped")
}

func (s *Service) snapshot() (*medals.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.dataset, nil
}

// Sports returns the sorted distinct sports of the working dataset.
func (s *Service) Sports(_ context.Context) ([]string, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ds.Sports(), nil
}

// RecordSelection counts a dashboard view for sport. Recording failures are
// logged and otherwise ignored.
func (s *Service) RecordSelection(ctx context.Context, sport string) {
	metrics.RecordFilterSelection(usage.Key(sport))
	if err := s.usage.Record(ctx, sport); err != nil {
		s.log().Warn(ctx, "failed to record usage",
			logger.String("sport", sport),
			logger.Error(err),
		)
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// Chart computes one chart for the given sport filter.
func (s *Service) Chart(ctx context.Context, id charts.ID, sport string) (charts.Chart, error) {
	if !charts.Known(id) {
		return charts.Chart{}, fmt.Errorf("%w: %s", ErrUnknownChart, id)
	}
	ds, err := s.snapshot()
	if err != nil {
		return charts.Chart{}, err
	}
	if err := ctx.Err(); err != nil {
		return charts.Chart{}, err
	}
	return s.build(ds, id, analytics.FilterSport(ds.Records(), sport)), nil
}

// Dashboard computes every chart for the given sport filter. The charts
// read the same filtered snapshot and are computed concurrently; the result
// is in charts.All order.
func (s *Service) Dashboard(ctx context.Context, sport string) ([]charts.Chart, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	records := analytics.FilterSport(ds.Records(), sport)

	ids := charts.All()
	out := make([]charts.Chart, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = s.build(ds, id, records)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Forecast fits the yearly series of the given sport filter.
func (s *Service) Forecast(ctx context.Context, sport string) (analytics.Forecast, error) {
	ds, err := s.snapshot()
	if err != nil {
		return analytics.Forecast{}, err
	}
	if err := ctx.Err(); err != nil {
		return analytics.Forecast{}, err
	}
	return s.forecast(ds, analytics.FilterSport(ds.Records(), sport)), nil
}

func (s *Service) forecast(ds *medals.Dataset, records []model.MedalRecord) analytics.Forecast {
	f := analytics.FitForecast(analytics.MedalsByYear(records, ds), s.forecastYears)
	if !f.Available {
		metrics.RecordForecastDegenerate()
	}
	return f
}

// Export writes the workbook of the given sport filter to w.
func (s *Service) Export(ctx context.Context, sport string, w io.Writer) error {
	ds, err := s.snapshot()
	if err != nil {
		return err
	}
	list, err := s.Dashboard(ctx, sport)
	if err != nil {
		return err
	}
	in := export.Input{
		Sport:    sport,
		Team:     ds.Team(),
		Season:   string(ds.Season()),
		Charts:   list,
		Forecast: s.forecast(ds, analytics.FilterSport(ds.Records(), sport)),
	}
	if err := export.Write(w, in); err != nil {
		return fmt.Errorf("export %q: %w", sport, err)
	}
	metrics.RecordExport()
	return nil
}

// build computes one chart from already filtered records.
func (s *Service) build(ds *medals.Dataset, id charts.ID, records []model.MedalRecord) charts.Chart {
	start := time.Now()
	defer func() {
		metrics.RecordAggregationDuration(string(id), float64(time.Since(start).Microseconds())/1000)
	}()

	switch id {
	case charts.MedalsByYear:
		return charts.ForMedalsByYear(analytics.MedalsByYear(records, ds))
	case charts.MedalsBySport:
		return charts.ForMedalsBySport(analytics.MedalsBySport(records))
	case charts.MedalsBySex:
		return charts.ForMedalsBySex(analytics.MedalsBySex(records))
	case charts.TopAthletes:
		return charts.ForTopAthletes(analytics.TopAthletes(records, s.topN))
	case charts.MedalsBySexByYear:
		return charts.ForMedalsBySexByYear(analytics.MedalsBySexByYear(records))
	case charts.TopAthletesBySex:
		return charts.ForTopAthletesBySex(analytics.TopAthletesBySex(records, s.topN))
	case charts.GrowthBySport:
		return charts.ForGrowthBySport(analytics.GrowthBySport(records, s.topN))
	case charts.PromisingBySexRecent:
		return charts.ForPromisingBySexRecent(
			analytics.PromisingBySexRecent(records, ds.MaxYear(), s.recentWindow),
			analytics.RecentCutoff(ds.MaxYear(), s.recentWindow),
		)
	case charts.Forecast:
		return charts.ForForecast(s.forecast(ds, records))
	default:
		return charts.Chart{ID: id}
	}
}

// Summary describes the loaded dataset.
func (s *Service) Summary() (Summary, error) {
	ds, err := s.snapshot()
	if err != nil {
		return Summary{}, err
	}
	st := ds.Stats()
	return Summary{
		Team:       ds.Team(),
		Season:     string(ds.Season()),
		RawRows:    st.RawRows,
		KeptRows:   st.KeptRows,
		UniqueRows: st.UniqueRows,
		Sports:     len(ds.Sports()),
		FirstYear:  ds.MinYear(),
		LastYear:   ds.MaxYear(),
		HostCities: len(ds.Cities()),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	stats := map[string]any{
		"started":       started,
		"topN":          s.topN,
		"recentWindow":  s.recentWindow,
		"forecastYears": s.forecastYears,
		"usageBackend":  s.usage.Name(),
	}
	if !started {
		return stats
	}

	stats["uptimeSeconds"] = int64(time.Since(startedAt).Seconds())
	if sum, err := s.Summary(); err == nil {
		stats["dataset"] = sum
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if counts, err := s.usage.Counts(ctx); err == nil {
		stats["selections"] = counts
	} else {
		s.log().Warn(ctx, "failed to read usage counters", logger.Error(err))
	}
	return stats
}
