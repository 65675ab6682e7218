// Package medals builds the immutable working dataset the dashboard reads:
// one team, one season, podium rows only, one row per awarded medal.
package medals

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/okian/medaldash/internal/domain/dedupe"
	"github.com/okian/medaldash/internal/domain/model"
)

// RequiredColumns are the source columns the loader needs.
var RequiredColumns = []string{"Year", "Sport", "Event", "Sex", "Name", "Medal", "Team", "Season", "City"}

// Sentinel errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptySource   = errors.New("source has no header")
)

// LoadStats describes how many rows survived each stage of Build.
type LoadStats struct {
	RawRows    int `json:"raw_rows"`
	KeptRows   int `json:"kept_rows"`
	UniqueRows int `json:"unique_rows"`
}

// Dataset is the read-only working set. Construct it with Build; the zero
// value is an empty dataset.
type Dataset struct {
	team    string
	season  model.Season
	records []model.MedalRecord
	cities  map[int]string
	sports  []string
	minYear int
	maxYear int
	stats   LoadStats
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	team   string
	season model.Season
}

// WithTeam restricts the dataset to one team (default "Brazil").
func WithTeam(team string) Option {
	return func(o *buildOptions) {
		if t := strings.TrimSpace(team); t != "" {
			o.team = t
		}
	}
}

// WithSeason restricts the dataset to one season (default Summer).
func WithSeason(season string) Option {
	return func(o *buildOptions) {
		if strings.TrimSpace(season) != "" {
			o.season = model.ParseSeason(season)
		}
	}
}

// Build filters raw rows to the configured team and season, keeps podium
// medals, and collapses rows sharing (year, sport, event, medal).
//
// The year→city table is taken from every row of the configured season,
// regardless of team or medal, first city seen per year. The sport list
// comes from the team/season rows before the medal filter, so sports with
// no podium still appear in the selector.
func Build(ctx context.Context, raw []model.MedalRecord, opts ...Option) *Dataset {
	o := buildOptions{team: "Brazil", season: model.SeasonSummer}
	for _, opt := range opts {
		opt(&o)
	}

	ds := &Dataset{
		team:   o.team,
		season: o.season,
		cities: make(map[int]string),
	}
	ds.stats.RawRows = len(raw)

	sportSet := make(map[string]struct{})
	kept := make([]model.MedalRecord, 0, len(raw)/8)
	for _, r := range raw {
		if r.Season != o.season {
			continue
		}
		if _, ok := ds.cities[r.Year]; !ok && r.City != "" {
			ds.cities[r.Year] = r.City
		}
		if r.Team != o.team {
			continue
		}
		if r.Sport != "" {
			sportSet[r.Sport] = struct{}{}
		}
		if !r.Medal.Counted() {
			continue
		}
		kept = append(kept, r)
	}
	ds.stats.KeptRows = len(kept)

	d := dedupe.NewInMemoryDeduper(dedupe.WithCapacityHint(len(kept)))
	ds.records = dedupe.Filter(ctx, d, kept, model.MedalRecord.MedalKey)
	ds.stats.UniqueRows = len(ds.records)

	ds.sports = make([]string, 0, len(sportSet))
	for s := range sportSet {
		ds.sports = append(ds.sports, s)
	}
	slices.Sort(ds.sports)

	for i, r := range ds.records {
		if i == 0 || r.Year < ds.minYear {
			ds.minYear = r.Year
		}
		if i == 0 || r.Year > ds.maxYear {
			ds.maxYear = r.Year
		}
	}
	return ds
}

// Records returns a copy of the working rows in load order.
func (d *Dataset) Records() []model.MedalRecord {
	return slices.Clone(d.records)
}

// Len returns the number of working rows.
func (d *Dataset) Len() int { return len(d.records) }

// Sports returns the sorted distinct sports of the team/season rows.
func (d *Dataset) Sports() []string { return slices.Clone(d.sports) }

// HasSport reports whether sport appears in Sports.
func (d *Dataset) HasSport(sport string) bool {
	_, found := slices.BinarySearch(d.sports, sport)
	return found
}

// City returns the host city of year.
func (d *Dataset) City(year int) (string, bool) {
	c, ok := d.cities[year]
	return c, ok
}

// Cities returns a copy of the year→city table.
func (d *Dataset) Cities() map[int]string {
	out := make(map[int]string, len(d.cities))
	for y, c := range d.cities {
		out[y] = c
	}
	return out
}

// MinYear and MaxYear bound the working rows; both are 0 when empty.
func (d *Dataset) MinYear() int { return d.minYear }
func (d *Dataset) MaxYear() int { return d.maxYear }

// Team and Season report the restriction the dataset was built with.
func (d *Dataset) Team() string         { return d.team }
func (d *Dataset) Season() model.Season { return d.season }

// Stats reports row counts per build stage.
func (d *Dataset) Stats() LoadStats { return d.stats }
