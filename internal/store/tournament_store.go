package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// TournamentRow is a Tournaments row as stored. Timestamps and the bracket
// document are kept as text; decoding them is the caller's job.
type TournamentRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        string `db:"type"`
	Status      string `db:"status"`
	League      string `db:"league"`
	DateCreated string `db:"date_created"`
	LastUpdated string `db:"last_updated"`
	Data        string `db:"tournament_data"`
	Revision    int64  `db:"revision"`
}

// Summary is the browsing projection of a tournament.
type Summary struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	League string `db:"league" json:"league"`
	Type   string `db:"type" json:"type"`
	Status string `db:"status" json:"status"`
}

// UpdateParams replaces the mutable part of a row. ExpectedRevision of zero
// skips the revision check (last write wins).
type UpdateParams struct {
	ID               int64
	Data             string
	Status           string
	LastUpdated      string
	ExpectedRevision int64
}

type TournamentStore struct {
	db *sqlx.DB
}

const (
	insertTournamentQuery = `
		INSERT INTO Tournaments (name, description, type, status, league, date_created, last_updated, tournament_data, revision)
		VALUES (:name, :description, :type, :status, :league, :date_created, :last_updated, :tournament_data, 1)
	`
	getTournamentQuery = `
		SELECT id, name, description, type, status, league, date_created, last_updated, tournament_data, revision
		FROM Tournaments WHERE id = ?
	`
	listSummariesQuery = "SELECT id, name, league, type, status FROM Tournaments ORDER BY id ASC"
	updateTournamentQuery = `
		UPDATE Tournaments SET
		tournament_data = ?,
		status = ?,
		last_updated = ?,
		revision = revision + 1
		WHERE id = ? AND (? = 0 OR revision = ?)
	`
	tournamentExistsQuery = "SELECT COUNT(*) FROM Tournaments WHERE id = ?"
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// Insert stores a new row and returns the id SQLite assigned to it.
func (s *TournamentStore) Insert(ctx context.Context, row *TournamentRow) (int64, error) {
	return s.insert(ctx, s.db, row)
}

func (s *TournamentStore) InsertTx(ctx context.Context, tx *sqlx.Tx, row *TournamentRow) (int64, error) {
	return s.insert(ctx, tx, row)
}

func (s *TournamentStore) insert(ctx context.Context, e sqlx.ExtContext, row *TournamentRow) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, e, insertTournamentQuery, row)
	if err != nil {
		return 0, storageErr("insert tournament", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert tournament", err)
	}
	row.ID = id
	row.Revision = 1
	return id, nil
}

// Get returns ErrNotFound when no row has the id.
func (s *TournamentStore) Get(ctx context.Context, id int64) (*TournamentRow, error) {
	return s.get(ctx, s.db, id)
}

func (s *TournamentStore) GetTx(ctx context.Context, tx *sqlx.Tx, id int64) (*TournamentRow, error) {
	return s.get(ctx, tx, id)
}

func (s *TournamentStore) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*TournamentRow, error) {
	var row TournamentRow
	err := sqlx.GetContext(ctx, q, &row, getTournamentQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get tournament", err)
	}
	return &row, nil
}

func (s *TournamentStore) ListSummaries(ctx context.Context) ([]Summary, error) {
	summaries := []Summary{}
	if err := s.db.SelectContext(ctx, &summaries, listSummariesQuery); err != nil {
		return nil, storageErr("list tournaments", err)
	}
	return summaries, nil
}

// Update overwrites document, status and last_updated in one statement and
// bumps the revision. It returns ErrNotFound for an unknown id and
// ErrConflict when ExpectedRevision is set and does not match.
func (s *TournamentStore) Update(ctx context.Context, p UpdateParams) error {
	return s.update(ctx, s.db, p)
}

func (s *TournamentStore) UpdateTx(ctx context.Context, tx *sqlx.Tx, p UpdateParams) error {
	return s.update(ctx, tx, p)
}

func (s *TournamentStore) update(ctx context.Context, e sqlx.ExtContext, p UpdateParams) error {
	res, err := e.ExecContext(ctx, updateTournamentQuery,
		p.Data, p.Status, p.LastUpdated, p.ID, p.ExpectedRevision, p.ExpectedRevision)
	if err != nil {
		return storageErr("update tournament", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update tournament", err)
	}
	if n > 0 {
		return nil
	}

	var count int
	if err := sqlx.GetContext(ctx, e, &count, tournamentExistsQuery, p.ID); err != nil {
		return storageErr("update tournament", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
