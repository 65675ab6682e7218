// Package export writes the dashboard aggregates as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/charts"
)

// ContentType of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet  = "Resumo"
	forecastSheet = "Forecast"
)

// Input is everything one workbook holds.
type Input struct {
	Sport    string
	Team     string
	Season   string
	Charts   []charts.Chart
	Forecast analytics.Forecast
}

// Filename suggests a download name for the workbook.
func Filename(sport string) string {
	if sport == "" {
		return "medaldash.xlsx"
	}
	return fmt.Sprintf("medaldash-%s.xlsx", sanitize(sport))
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// Write builds the workbook and streams it to w. The first sheet summarizes
// the filter; each chart gets a sheet named after its id with one row per
// point; the Forecast sheet lists the fit and the projected points.
func Write(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sport := in.Sport
	if sport == "" {
		sport = "(todos)"
	}
	summary := [][]any{
		{"Equipe", in.Team},
		{"Temporada", in.Season},
		{"Esporte", sport},
		{"Gráficos", len(in.Charts)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	for _, c := range in.Charts {
		if err := writeChart(f, c); err != nil {
			return err
		}
	}
	if err := writeForecast(f, in.Forecast); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeChart(f *excelize.File, c charts.Chart) error {
	sheet := string(c.ID)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}
	rows := [][]any{{"Série", c.XLabel, c.YLabel}}
	for _, s := range c.Series {
		for _, p := range s.Points {
			rows = append(rows, []any{s.Name, p.Label, p.Y})
		}
	}
	return writeRows(f, sheet, rows)
}

func writeForecast(f *excelize.File, fc analytics.Forecast) error {
	if _, err := f.NewSheet(forecastSheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", forecastSheet, err)
	}
	rows := [][]any{{"Ano", "Medalhas", "Tipo"}}
	for _, p := range fc.Series {
		rows = append(rows, []any{p.Year, p.Count, "observado"})
	}
	for _, p := range fc.Projections {
		rows = append(rows, []any{p.Year, p.Count, "previsto"})
	}
	if fc.Fit != nil {
		rows = append(rows, []any{}, []any{"Inclinação", fc.Fit.Slope}, []any{"Intercepto", fc.Fit.Intercept})
	} else {
		rows = append(rows, []any{}, []any{"Previsão indisponível: menos de dois anos distintos"})
	}
	return writeRows(f, forecastSheet, rows)
}
