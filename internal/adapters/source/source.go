// Package source reads raw medal records from a tabular file: a CSV export
// or a SQLite database holding the same columns.
package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/medaldash/internal/domain/medals"
	"github.com/okian/medaldash/internal/domain/model"
)

// Sentinel errors.
var (
	ErrUnsupported  = errors.New("unsupported dataset format")
	ErrMalformedRow = errors.New("malformed row")
)

// Source yields every raw row of a dataset, unfiltered.
type Source interface {
	Read(ctx context.Context) ([]model.MedalRecord, error)
	Name() string
}

// Open picks a Source from the file extension. .db, .sqlite and .sqlite3
// open a SQLite database reading table; .csv or no extension reads a CSV.
func Open(path, table string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLite(path, table), nil
	case ".csv", "":
		return NewCSV(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// missingColumns returns the required columns absent from have.
func missingColumns(have []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, c := range medals.RequiredColumns {
		if _, ok := set[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func checkColumns(have []string) error {
	if missing := missingColumns(have); len(missing) > 0 {
		return fmt.Errorf("%w: %s", medals.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// clean maps the null markers dataframes and databases produce to "".
func clean(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "NaN", "NA", "<nil>":
		return ""
	}
	return s
}

// parseYear accepts "1996" as well as "1996.0".
func parseYear(s string) (int, error) {
	s = clean(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: year %q", ErrMalformedRow, s)
	}
	return int(f), nil
}

// toRecord builds a record from cells in RequiredColumns order.
func toRecord(cells []string) (model.MedalRecord, error) {
	year, err := parseYear(cells[0])
	if err != nil {
		return model.MedalRecord{}, err
	}
	return model.MedalRecord{
		Year:   year,
		Sport:  clean(cells[1]),
		Event:  clean(cells[2]),
		Sex:    model.ParseSex(cells[3]),
		Name:   clean(cells[4]),
		Medal:  model.ParseMedal(cells[5]),
		Team:   clean(cells[6]),
		Season: model.ParseSeason(clean(cells[7])),
		City:   clean(cells[8]),
	}, nil
}
