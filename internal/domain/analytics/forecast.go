package analytics

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MinForecastYears is the number of distinct years a line fit needs.
const MinForecastYears = 2

// LinearFit is count = Intercept + Slope*year.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the fitted line.
func (f LinearFit) At(year int) float64 {
	return f.Intercept + f.Slope*float64(year)
}

// Projection is one forecast point.
type Projection struct {
	Year  int     `json:"year"`
	Count float64 `json:"count"`
}

// Forecast is the observed yearly series plus its linear projection. When
// the series has fewer than MinForecastYears distinct years, Available is
// false and Fit and Projections are empty.
type Forecast struct {
	Series      []YearCount  `json:"series"`
	Available   bool         `json:"available"`
	Fit         *LinearFit   `json:"fit,omitempty"`
	Projections []Projection `json:"projections"`
}

// FitForecast fits an ordinary least-squares line through series and
// evaluates it at every year in years. Projections are not clamped, so a
// falling trend can project below zero.
func FitForecast(series []YearCount, years []int) Forecast {
	sorted := slices.Clone(series)
	slices.SortStableFunc(sorted, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })

	out := Forecast{Series: sorted, Projections: []Projection{}}
	if distinctYears(sorted) < MinForecastYears {
		return out
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i] = float64(p.Year)
		ys[i] = float64(p.Count)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	fit := LinearFit{Slope: beta, Intercept: alpha}

	out.Available = true
	out.Fit = &fit
	for _, y := range years {
		out.Projections = append(out.Projections, Projection{Year: y, Count: fit.At(y)})
	}
	return out
}

func distinctYears(series []YearCount) int {
	n := 0
	for i, p := range series {
		if i == 0 || p.Year != series[i-1].Year {
			n++
		}
	}
	return n
}
