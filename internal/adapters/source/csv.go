package source

import (
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/medaldash/internal/domain/medals"
	"github.com/okian/medaldash/internal/domain/model"
)

// CSV reads a comma separated export with a header row.
type CSV struct {
	path string
}

// NewCSV returns a CSV source for path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Name implements Source.
func (c *CSV) Name() string { return "csv:" + c.path }

// Read loads the file into a string-typed dataframe, checks the header and
// converts every row.
func (c *CSV) Read(ctx context.Context) ([]model.MedalRecord, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.path, err)
	}
	defer func() { _ = f.Close() }()

	if st, err := f.Stat(); err == nil && st.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", c.path, medals.ErrEmptySource)
	}

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"NA", "NaN", "<nil>", ""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.path, df.Err)
	}
	if err := checkColumns(df.Names()); err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}

	df = df.Select(medals.RequiredColumns)
	if df.Err != nil {
		return nil, fmt.Errorf("select columns: %w", df.Err)
	}

	cols := make([][]string, len(medals.RequiredColumns))
	for i, name := range medals.RequiredColumns {
		cols[i] = df.Col(name).Records()
	}

	rows := df.Nrow()
	out := make([]model.MedalRecord, 0, rows)
	cells := make([]string, len(cols))
	for r := 0; r < rows; r++ {
		if r%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i := range cols {
			cells[i] = cols[i][r]
		}
		rec, err := toRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", c.path, r+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
