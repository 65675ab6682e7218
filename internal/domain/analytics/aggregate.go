package analytics

import (
	"cmp"
	"slices"

	"github.com/okian/medaldash/internal/domain/model"
)

// CityLookup resolves the host city of an Olympic year.
type CityLookup interface {
	City(year int) (string, bool)
}

// YearCount is one point of the medals-per-year series.
type YearCount struct {
	Year  int    `json:"year"`
	City  string `json:"city,omitempty"`
	Count int    `json:"count"`
}

// LabelCount is a count keyed by a single label (sport, sex, athlete).
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// YearSexCount is one point of the per-sex time series.
type YearSexCount struct {
	Year  int       `json:"year"`
	Sex   model.Sex `json:"sex"`
	Count int       `json:"count"`
}

// SexRanking is the athlete ranking of one sex.
type SexRanking struct {
	Sex      model.Sex    `json:"sex"`
	Athletes []LabelCount `json:"athletes"`
}

// SportGrowth compares a sport's medal count in its first and last year.
type SportGrowth struct {
	Sport      string `json:"sport"`
	FirstYear  int    `json:"first_year"`
	LastYear   int    `json:"last_year"`
	FirstCount int    `json:"first_count"`
	LastCount  int    `json:"last_count"`
	Growth     int    `json:"growth"`
}

// SportSexCount is a count keyed by (sport, sex).
type SportSexCount struct {
	Sport string    `json:"sport"`
	Sex   model.Sex `json:"sex"`
	Count int       `json:"count"`
}

type counted[K comparable] struct {
	key K
	n   int
}

// countBy groups records by key and returns the groups in ascending key
// order. Rankings sort this output stably, so ties keep key order.
func countBy[K comparable](records []model.MedalRecord, key func(model.MedalRecord) K, compare func(a, b K) int) []counted[K] {
	idx := make(map[K]int)
	var out []counted[K]
	for _, r := range records {
		k := key(r)
		if i, ok := idx[k]; ok {
			out[i].n++
			continue
		}
		idx[k] = len(out)
		out = append(out, counted[K]{key: k, n: 1})
	}
	slices.SortFunc(out, func(a, b counted[K]) int { return compare(a.key, b.key) })
	return out
}

func byCountDesc(a, b LabelCount) int { return cmp.Compare(b.Count, a.Count) }

func truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func labelCounts(records []model.MedalRecord, key func(model.MedalRecord) string) []LabelCount {
	groups := countBy(records, key, cmp.Compare[string])
	out := make([]LabelCount, len(groups))
	for i, g := range groups {
		out[i] = LabelCount{Label: g.key, Count: g.n}
	}
	return out
}

// MedalsByYear counts medals per year, ascending, with the host city attached
// when cities knows it.
func MedalsByYear(records []model.MedalRecord, cities CityLookup) []YearCount {
	groups := countBy(records, func(r model.MedalRecord) int { return r.Year }, cmp.Compare[int])
	out := make([]YearCount, len(groups))
	for i, g := range groups {
		out[i] = YearCount{Year: g.key, Count: g.n}
		if cities != nil {
			out[i].City, _ = cities.City(g.key)
		}
	}
	return out
}

// MedalsBySport counts medals per sport, highest first.
func MedalsBySport(records []model.MedalRecord) []LabelCount {
	out := labelCounts(records, func(r model.MedalRecord) string { return r.Sport })
	slices.SortStableFunc(out, byCountDesc)
	return out
}

// MedalsBySex counts medals per athlete sex.
func MedalsBySex(records []model.MedalRecord) []LabelCount {
	return labelCounts(records, func(r model.MedalRecord) string { return string(r.Sex) })
}

// TopAthletes ranks athletes by medal count and keeps the first n.
func TopAthletes(records []model.MedalRecord, n int) []LabelCount {
	out := labelCounts(records, func(r model.MedalRecord) string { return r.Name })
	slices.SortStableFunc(out, byCountDesc)
	return truncate(out, n)
}

// MedalsBySexByYear counts medals per (year, sex), ordered by year then sex.
func MedalsBySexByYear(records []model.MedalRecord) []YearSexCount {
	type key struct {
		year int
		sex  model.Sex
	}
	groups := countBy(records, func(r model.MedalRecord) key { return key{r.Year, r.Sex} }, func(a, b key) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}
		return cmp.Compare(a.sex, b.sex)
	})
	out := make([]YearSexCount, len(groups))
	for i, g := range groups {
		out[i] = YearSexCount{Year: g.key.year, Sex: g.key.sex, Count: g.n}
	}
	return out
}

// TopAthletesBySex ranks athletes within each sex and keeps n per sex.
// Sexes are returned in ascending order.
func TopAthletesBySex(records []model.MedalRecord, n int) []SexRanking {
	bySex := make(map[model.Sex][]model.MedalRecord)
	for _, r := range records {
		bySex[r.Sex] = append(bySex[r.Sex], r)
	}
	sexes := make([]model.Sex, 0, len(bySex))
	for s := range bySex {
		sexes = append(sexes, s)
	}
	slices.Sort(sexes)

	out := make([]SexRanking, 0, len(sexes))
	for _, s := range sexes {
		out = append(out, SexRanking{Sex: s, Athletes: TopAthletes(bySex[s], n)})
	}
	return out
}

// GrowthBySport computes, per sport, the medal count in the sport's last
// year minus the count in its first year, using only the years in which the
// sport appears. A sport seen in a single year has growth 0. The result is
// sorted by growth, highest first, and truncated to n.
func GrowthBySport(records []model.MedalRecord, n int) []SportGrowth {
	type key struct {
		sport string
		year  int
	}
	perYear := countBy(records, func(r model.MedalRecord) key { return key{r.Sport, r.Year} }, func(a, b key) int {
		if c := cmp.Compare(a.sport, b.sport); c != 0 {
			return c
		}
		return cmp.Compare(a.year, b.year)
	})

	var out []SportGrowth
	for _, g := range perYear {
		last := len(out) - 1
		if last < 0 || out[last].Sport != g.key.sport {
			out = append(out, SportGrowth{
				Sport:      g.key.sport,
				FirstYear:  g.key.year,
				FirstCount: g.n,
				LastYear:   g.key.year,
				LastCount:  g.n,
			})
			continue
		}
		// perYear is sorted by year within a sport, so this row is the latest.
		out[last].LastYear = g.key.year
		out[last].LastCount = g.n
	}
	for i := range out {
		out[i].Growth = out[i].LastCount - out[i].FirstCount
	}
	slices.SortStableFunc(out, func(a, b SportGrowth) int { return cmp.Compare(b.Growth, a.Growth) })
	return truncate(out, n)
}

// PromisingBySexRecent counts medals per (sport, sex) over the years from
// maxYear-window onwards. maxYear is the latest year of the whole dataset,
// not of the current filter.
func PromisingBySexRecent(records []model.MedalRecord, maxYear, window int) []SportSexCount {
	if len(records) == 0 {
		return nil
	}
	recent := FromYear(records, RecentCutoff(maxYear, window))

	type key struct {
		sport string
		sex   model.Sex
	}
	groups := countBy(recent, func(r model.MedalRecord) key { return key{r.Sport, r.Sex} }, func(a, b key) int {
		if c := cmp.Compare(a.sport, b.sport); c != 0 {
			return c
		}
		return cmp.Compare(a.sex, b.sex)
	})
	out := make([]SportSexCount, len(groups))
	for i, g := range groups {
		out[i] = SportSexCount{Sport: g.key.sport, Sex: g.key.sex, Count: g.n}
	}
	return out
}

// RecentCutoff is the first year included by PromisingBySexRecent.
func RecentCutoff(maxYear, window int) int {
	return maxYear - window
}

// TotalByLabel sums a label-count table.
func TotalByLabel(items []LabelCount) int {
	total := 0
	for _, it := range items {
		total += it.Count
	}
	return total
}

// TotalByYear sums a year-count table.
func TotalByYear(items []YearCount) int {
	total := 0
	for _, it := range items {
		total += it.Count
	}
	return total
}
