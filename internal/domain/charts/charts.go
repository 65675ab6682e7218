// Package charts turns analytics aggregates into render-ready chart
// descriptions shared by the PNG renderer, the JSON API and the export.
package charts

import (
	"strconv"

	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/model"
)

// ID names one dashboard chart.
type ID string

// Chart ids, in dashboard order.
const (
	MedalsByYear         ID = "medals_by_year"
	MedalsBySport        ID = "medals_by_sport"
	MedalsBySex          ID = "medals_by_sex"
	TopAthletes          ID = "top_athletes"
	MedalsBySexByYear    ID = "medals_by_sex_by_year"
	TopAthletesBySex     ID = "top_athletes_by_sex"
	GrowthBySport        ID = "growth_by_sport"
	PromisingBySexRecent ID = "promising_by_sex_recent"
	Forecast             ID = "forecast"
)

// All lists every chart id in dashboard order.
func All() []ID {
	return []ID{
		MedalsByYear, MedalsBySport, MedalsBySex, TopAthletes,
		MedalsBySexByYear, TopAthletesBySex, GrowthBySport,
		PromisingBySexRecent, Forecast,
	}
}

// Known reports whether id names a chart.
func Known(id ID) bool {
	for _, c := range All() {
		if c == id {
			return true
		}
	}
	return false
}

// Kind is the chart geometry.
type Kind string

// Chart kinds.
const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Point is one value. Line charts use X, bar charts use Label.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Series is a named list of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
	Dashed bool    `json:"dashed,omitempty"`
}

// Chart is a render-ready description of one aggregate.
type Chart struct {
	ID     ID       `json:"id"`
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
}

// Empty reports whether no series holds a point.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// PointCount is the number of points across all series.
func (c Chart) PointCount() int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}
	return n
}

const medalsLabel = "Medalhas"

func yearPoint(year, count int) Point {
	return Point{Label: strconv.Itoa(year), X: float64(year), Y: float64(count)}
}

func labelPoints(items []analytics.LabelCount) []Point {
	points := make([]Point, len(items))
	for i, it := range items {
		points[i] = Point{Label: it.Label, X: float64(i), Y: float64(it.Count)}
	}
	return points
}

// ForMedalsByYear charts the yearly series. Labels carry the host city.
func ForMedalsByYear(items []analytics.YearCount) Chart {
	points := make([]Point, len(items))
	for i, it := range items {
		points[i] = yearPoint(it.Year, it.Count)
		if it.City != "" {
			points[i].Label += " (" + it.City + ")"
		}
	}
	return Chart{
		ID: MedalsByYear, Kind: KindLine,
		Title:  "Evolução das Medalhas por Ano",
		XLabel: "Ano", YLabel: medalsLabel,
		Series: []Series{{Name: medalsLabel, Points: points}},
	}
}

// ForMedalsBySport charts the sport ranking.
func ForMedalsBySport(items []analytics.LabelCount) Chart {
	return Chart{
		ID: MedalsBySport, Kind: KindBar,
		Title:  "Medalhas por Esporte",
		XLabel: "Esporte", YLabel: medalsLabel,
		Series: []Series{{Name: medalsLabel, Points: labelPoints(items)}},
	}
}

// ForMedalsBySex charts the per-sex totals.
func ForMedalsBySex(items []analytics.LabelCount) Chart {
	return Chart{
		ID: MedalsBySex, Kind: KindBar,
		Title:  "Medalhas por Sexo",
		XLabel: "Sexo", YLabel: medalsLabel,
		Series: []Series{{Name: medalsLabel, Points: labelPoints(items)}},
	}
}

// ForTopAthletes charts the athlete ranking.
func ForTopAthletes(items []analytics.LabelCount) Chart {
	return Chart{
		ID: TopAthletes, Kind: KindBar,
		Title:  "Top Atletas Brasileiros por Medalhas",
		XLabel: "Atleta", YLabel: medalsLabel,
		Series: []Series{{Name: medalsLabel, Points: labelPoints(items)}},
	}
}

// ForMedalsBySexByYear charts one line per sex.
func ForMedalsBySexByYear(items []analytics.YearSexCount) Chart {
	var series []Series
	idx := map[model.Sex]int{}
	for _, it := range items {
		i, ok := idx[it.Sex]
		if !ok {
			i = len(series)
			idx[it.Sex] = i
			series = append(series, Series{Name: string(it.Sex)})
		}
		series[i].Points = append(series[i].Points, yearPoint(it.Year, it.Count))
	}
	return Chart{
		ID: MedalsBySexByYear, Kind: KindLine,
		Title:  "Medalhas por Sexo ao Longo dos Anos",
		XLabel: "Ano", YLabel: medalsLabel,
		Series: series,
	}
}

// ForTopAthletesBySex charts one bar group per sex.
func ForTopAthletesBySex(items []analytics.SexRanking) Chart {
	series := make([]Series, len(items))
	for i, it := range items {
		series[i] = Series{Name: string(it.Sex), Points: labelPoints(it.Athletes)}
	}
	return Chart{
		ID: TopAthletesBySex, Kind: KindBar,
		Title:  "Top Atletas por Sexo",
		XLabel: "Atleta", YLabel: medalsLabel,
		Series: series,
	}
}

// ForGrowthBySport charts last-year minus first-year counts per sport.
func ForGrowthBySport(items []analytics.SportGrowth) Chart {
	points := make([]Point, len(items))
	for i, it := range items {
		points[i] = Point{Label: it.Sport, X: float64(i), Y: float64(it.Growth)}
	}
	return Chart{
		ID: GrowthBySport, Kind: KindBar,
		Title:  "Crescimento de Medalhas por Esporte",
		XLabel: "Esporte", YLabel: "Variação",
		Series: []Series{{Name: "Crescimento", Points: points}},
	}
}

// ForPromisingBySexRecent charts recent per-sport counts, one series per sex.
func ForPromisingBySexRecent(items []analytics.SportSexCount, fromYear int) Chart {
	var series []Series
	idx := map[model.Sex]int{}
	for _, it := range items {
		i, ok := idx[it.Sex]
		if !ok {
			i = len(series)
			idx[it.Sex] = i
			series = append(series, Series{Name: string(it.Sex)})
		}
		series[i].Points = append(series[i].Points, Point{
			Label: it.Sport, X: float64(len(series[i].Points)), Y: float64(it.Count),
		})
	}
	return Chart{
		ID: PromisingBySexRecent, Kind: KindBar,
		Title:  "Esportes Promissores por Sexo desde " + strconv.Itoa(fromYear),
		XLabel: "Esporte", YLabel: medalsLabel,
		Series: series,
	}
}

// ForForecast charts the observed series and, when available, a dashed
// projection that starts at the last observed point.
func ForForecast(f analytics.Forecast) Chart {
	observed := make([]Point, len(f.Series))
	for i, it := range f.Series {
		observed[i] = yearPoint(it.Year, it.Count)
	}
	series := []Series{{Name: "Observado", Points: observed}}

	if f.Available && len(observed) > 0 {
		projected := []Point{observed[len(observed)-1]}
		for _, p := range f.Projections {
			projected = append(projected, Point{Label: strconv.Itoa(p.Year), X: float64(p.Year), Y: p.Count})
		}
		series = append(series, Series{Name: "Previsão", Points: projected, Dashed: true})
	}
	return Chart{
		ID: Forecast, Kind: KindLine,
		Title:  "Previsão de Medalhas (Regressão Linear)",
		XLabel: "Ano", YLabel: medalsLabel,
		Series: series,
	}
}
