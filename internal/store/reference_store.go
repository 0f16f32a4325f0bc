package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	TeamsTable     = "Teams"
	BallparksTable = "Ballparks"
)

// referenceTables is the fixed set of tables bulk imports may append to.
var referenceTables = map[string]bool{
	TeamsTable:     true,
	BallparksTable: true,
}

// ImportRecord is one audit row written alongside every bulk append.
type ImportRecord struct {
	ID         string `db:"import_id" json:"import_id"`
	Table      string `db:"table_name" json:"table_name"`
	RowCount   int    `db:"row_count" json:"row_count"`
	Source     string `db:"source" json:"source"`
	ImportedAt string `db:"imported_at" json:"imported_at"`
}

// TeamRef is the slice of a Teams row a bracket roster links to.
type TeamRef struct {
	TeamID       string `db:"team_id" json:"team_id"`
	Location     string `db:"location" json:"location"`
	Nickname     string `db:"nickname" json:"nickname"`
	Abbreviation string `db:"abbreviation" json:"abbreviation"`
	League       string `db:"league" json:"league"`
}

type ReferenceStore struct {
	db  *sqlx.DB
	now func() time.Time
}

const (
	insertImportQuery = `
		INSERT INTO Imports (import_id, table_name, row_count, source, imported_at) VALUES
		(:import_id, :table_name, :row_count, :source, :imported_at)
	`
	listImportsQuery = "SELECT * FROM Imports ORDER BY imported_at ASC, import_id ASC"
	findTeamQuery    = `
		SELECT team_id, location, nickname, abbreviation, league FROM Teams
		WHERE league = ? AND (team_id = ? OR abbreviation = ? COLLATE NOCASE)
		ORDER BY year DESC
		LIMIT 1
	`
)

func NewReferenceStore(db *sqlx.DB) *ReferenceStore {
	return &ReferenceStore{db: db, now: time.Now}
}

func IsReferenceTable(table string) bool {
	return referenceTables[table]
}

// AppendRows inserts every row as given, plus an Imports audit row, in one
// transaction. Either all rows land or none do.
func (s *ReferenceStore) AppendRows(ctx context.Context, table string, columns []string, rows [][]any, source string) (*ImportRecord, error) {
	if !referenceTables[table] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	query, err := buildInsert(table, columns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin import", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return nil, storageErr("prepare import", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return nil, storageErr(fmt.Sprintf("append %s row %d", table, i+1), err)
		}
	}

	record := &ImportRecord{
		ID:         uuid.NewString(),
		Table:      table,
		RowCount:   len(rows),
		Source:     source,
		ImportedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := tx.NamedExecContext(ctx, insertImportQuery, record); err != nil {
		return nil, storageErr("record import", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit import", err)
	}
	return record, nil
}

func (s *ReferenceStore) CountRows(ctx context.Context, table string) (int, error) {
	if !referenceTables[table] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, storageErr("count "+table, err)
	}
	return n, nil
}

func (s *ReferenceStore) ListImports(ctx context.Context) ([]ImportRecord, error) {
	records := []ImportRecord{}
	if err := s.db.SelectContext(ctx, &records, listImportsQuery); err != nil {
		return nil, storageErr("list imports", err)
	}
	return records, nil
}

// FindTeam looks a team up by id or abbreviation within a league, newest
// season first.
func (s *ReferenceStore) FindTeam(ctx context.Context, league, key string) (*TeamRef, error) {
	var team TeamRef
	err := s.db.GetContext(ctx, &team, findTeamQuery, league, key, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find team", err)
	}
	return &team, nil
}

func buildInsert(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("no columns to insert into %s", table)
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if c == "" || strings.ContainsAny(c, "\"\x00") {
			return "", fmt.Errorf("invalid column name %q", c)
		}
		quoted[i] = `"` + c + `"`
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quoted, ", "), placeholders), nil
}
