package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver

	"github.com/okian/medaldash/internal/domain/medals"
	"github.com/okian/medaldash/internal/domain/model"
)

// SQLite reads the records from one table of a SQLite database.
type SQLite struct {
	dsn   string
	table string
	db    *sql.DB
}

// NewSQLite returns a source reading table from the database at dsn.
func NewSQLite(dsn, table string) *SQLite {
	return &SQLite{dsn: dsn, table: table}
}

// NewSQLiteDB reads table from an already open database. The caller keeps
// ownership of db.
func NewSQLiteDB(db *sql.DB, table string) *SQLite {
	return &SQLite{db: db, table: table}
}

// Name implements Source.
func (s *SQLite) Name() string { return "sqlite:" + s.dsn + "#" + s.table }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Read implements Source.
func (s *SQLite) Read(ctx context.Context) ([]model.MedalRecord, error) {
	db := s.db
	if db == nil {
		var err error
		db, err = sql.Open("sqlite", s.dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s.dsn, err)
		}
		defer func() { _ = db.Close() }()
	}

	cols, err := s.columns(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: %w", s.table, medals.ErrEmptySource)
	}
	if err := checkColumns(cols); err != nil {
		return nil, fmt.Errorf("table %s: %w", s.table, err)
	}

	quoted := make([]string, len(medals.RequiredColumns))
	for i, c := range medals.RequiredColumns {
		quoted[i] = quoteIdent(c)
	}
	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(s.table) //nolint:gosec // identifiers are quoted
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MedalRecord
	vals := make([]sql.NullString, len(medals.RequiredColumns))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	cells := make([]string, len(vals))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		for i, v := range vals {
			cells[i] = v.String
		}
		rec, err := toRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", s.table, len(out)+1, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return out, nil
}

func (s *SQLite) columns(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", s.table)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect %s: %w", s.table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
