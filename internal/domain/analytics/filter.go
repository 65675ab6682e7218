// Package analytics holds the pure functions behind every dashboard chart:
// the sport filter, the grouped counts and the linear forecast. None of them
// mutate their input.
package analytics

import (
	"strings"

	"github.com/okian/medaldash/internal/domain/model"
)

// FilterSport returns the records whose sport equals sport. An empty or
// blank sport means no filter and returns records as given.
func FilterSport(records []model.MedalRecord, sport string) []model.MedalRecord {
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return records
	}
	out := make([]model.MedalRecord, 0, len(records)/4)
	for _, r := range records {
		if r.Sport == sport {
			out = append(out, r)
		}
	}
	return out
}

// FromYear returns the records with Year >= year.
func FromYear(records []model.MedalRecord, year int) []model.MedalRecord {
	out := make([]model.MedalRecord, 0, len(records))
	for _, r := range records {
		if r.Year >= year {
			out = append(out, r)
		}
	}
	return out
}
