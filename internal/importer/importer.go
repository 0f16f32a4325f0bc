package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/tournament-tracker/internal/metrics"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
)

var ErrUnknownTable = store.ErrUnknownTable

// Schemas lists the required columns of each importable table in table order.
var Schemas = map[string][]string{
	store.TeamsTable: {
		"team_id", "location", "nickname", "abbreviation", "year", "league",
		"conference", "division", "place", "head_coach", "home_stadium",
		"wins", "losses", "ties", "points_scored", "points_allowed",
		"primary_color", "secondary_color", "primary_text", "secondary_text",
	},
	store.BallparksTable: {
		"team_id", "ballpark_name", "location",
		"single_chance_left", "single_chance_right",
		"home_run_chance_left", "home_run_chance_right",
		"wall_height_left", "wall_height_right",
	},
}

// Dataset is a header row plus data rows. Values are passed to the database
// unchanged apart from empty strings, which become NULL.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// SchemaError describes why a dataset does not fit its target table. Every
// offending column is listed, not just the first.
type SchemaError struct {
	Table     string
	Missing   []string
	Unknown   []string
	Duplicate []string
	// Row is the 1-based data row whose width differs from the header.
	Row   int
	Width int
	Want  int
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown columns: "+strings.Join(e.Unknown, ", "))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate columns: "+strings.Join(e.Duplicate, ", "))
	}
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("row %d has %d values, want %d", e.Row, e.Width, e.Want))
	}
	return strings.Join(parts, "; ")
}

// Validate checks a dataset's header against the table schema and every
// row's width against the header. Types are not checked.
func Validate(table string, ds Dataset) error {
	required, ok := Schemas[table]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	present := make(map[string]bool, len(ds.Columns))
	known := make(map[string]bool, len(required))
	for _, c := range required {
		known[c] = true
	}

	serr := &SchemaError{Table: table}
	for _, c := range ds.Columns {
		if present[c] {
			serr.Duplicate = append(serr.Duplicate, c)
			continue
		}
		present[c] = true
		if !known[c] {
			serr.Unknown = append(serr.Unknown, c)
		}
	}
	for _, c := range required {
		if !present[c] {
			serr.Missing = append(serr.Missing, c)
		}
	}
	if len(serr.Missing) > 0 || len(serr.Unknown) > 0 || len(serr.Duplicate) > 0 {
		return serr
	}

	for i, row := range ds.Rows {
		if len(row) != len(ds.Columns) {
			serr.Row = i + 1
			serr.Width = len(row)
			serr.Want = len(ds.Columns)
			return serr
		}
	}
	return nil
}

type Importer struct {
	refs *store.ReferenceStore
}

func New(refs *store.ReferenceStore) *Importer {
	return &Importer{refs: refs}
}

// Import validates the dataset and appends every row to table in one
// transaction. Rows are not deduplicated.
func (im *Importer) Import(ctx context.Context, table string, ds Dataset, source string) (*store.ImportRecord, error) {
	if err := Validate(table, ds); err != nil {
		var serr *SchemaError
		if errors.As(err, &serr) {
			metrics.ImportSchemaFailures.WithLabelValues(table).Inc()
		}
		slog.Warn("import rejected", "table", table, "source", source, "error", err)
		return nil, err
	}

	rows := make([][]any, len(ds.Rows))
	for i, row := range ds.Rows {
		values := make([]any, len(row))
		for j, v := range row {
			if s, ok := v.(string); ok && s == "" {
				v = nil
			}
			values[j] = v
		}
		rows[i] = values
	}

	record, err := im.refs.AppendRows(ctx, table, ds.Columns, rows, source)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", table, err)
	}

	metrics.RowsImported.WithLabelValues(table).Add(float64(record.RowCount))
	slog.Info("import complete", "table", table, "rows", record.RowCount, "source", source, "import_id", record.ID)
	return record, nil
}
