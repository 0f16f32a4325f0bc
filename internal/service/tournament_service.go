package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/metrics"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	now   func() time.Time
}

type Option func(*TournamentService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TournamentService) {
		s.now = now
	}
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, opts ...Option) *TournamentService {
	s := &TournamentService{db: db, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Name        string
	Description string
	Type        string
	League      string
	Data        bracket.Document
}

// Validate checks the metadata callers must supply. Callers should run it
// before CreateTournament; the engine runs it again regardless.
func (in CreateInput) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"type", in.Type},
		{"league", in.League},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Err: ErrFieldBlank}
		}
	}
	return nil
}

func (s *TournamentService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// CreateTournament stores a new tournament with status created and returns
// its id.
func (s *TournamentService) CreateTournament(ctx context.Context, in CreateInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	data, err := in.Data.Encode()
	if err != nil {
		return 0, &ValidationError{Field: "data", Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, &store.StorageError{Op: "begin create", Err: err}
	}
	defer tx.Rollback()

	now := bracket.FormatTime(s.clock())
	row := store.TournamentRow{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		Status:      string(bracket.StatusCreated),
		League:      in.League,
		DateCreated: now,
		LastUpdated: now,
		Data:        string(data),
	}

	id, err := s.store.InsertTx(ctx, tx, &row)
	if err != nil {
		return 0, fmt.Errorf("create tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, &store.StorageError{Op: "commit create", Err: err}
	}

	metrics.TournamentsCreated.Inc()
	slog.Info("tournament created", "id", id, "name", in.Name, "type", in.Type, "league", in.League)
	return id, nil
}

// LoadTournament returns ErrNotFound for an unknown id and a
// *CorruptRecordError when the stored row cannot be decoded.
func (s *TournamentService) LoadTournament(ctx context.Context, id int64) (*bracket.Tournament, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", id, err)
	}

	t, err := decodeRow(row)
	if err != nil {
		metrics.CorruptRecords.Inc()
		slog.Error("stored tournament failed to decode", "id", id, "error", err)
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]store.Summary, error) {
	return s.store.ListSummaries(ctx)
}

// UpdateTournament replaces the document and status. Concurrent updates to
// the same id are last-write-wins; use UpdateTournamentIfRevision to detect
// them instead.
func (s *TournamentService) UpdateTournament(ctx context.Context, id int64, data bracket.Document, status bracket.Status) (*bracket.Tournament, error) {
	return s.update(ctx, id, 0, data, status)
}

// UpdateTournamentIfRevision is UpdateTournament that fails with ErrConflict
// unless the stored revision still equals expected.
func (s *TournamentService) UpdateTournamentIfRevision(ctx context.Context, id, expected int64, data bracket.Document, status bracket.Status) (*bracket.Tournament, error) {
	if expected <= 0 {
		return nil, &ValidationError{Field: "revision", Err: fmt.Errorf("must be positive, got %d", expected)}
	}
	return s.update(ctx, id, expected, data, status)
}

func (s *TournamentService) update(ctx context.Context, id, expected int64, data bracket.Document, status bracket.Status) (*bracket.Tournament, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Err: fmt.Errorf("%w: %q", bracket.ErrInvalidStatus, status)}
	}
	encoded, err := data.Encode()
	if err != nil {
		return nil, &ValidationError{Field: "data", Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &store.StorageError{Op: "begin update", Err: err}
	}
	defer tx.Rollback()

	row, err := s.store.GetTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("update tournament %d: %w", id, err)
	}
	if expected > 0 && row.Revision != expected {
		metrics.UpdateConflicts.Inc()
		return nil, fmt.Errorf("update tournament %d: revision %d, expected %d: %w", id, row.Revision, expected, ErrConflict)
	}

	current, err := bracket.ParseStatus(row.Status)
	if err != nil {
		return nil, &CorruptRecordError{ID: id, Err: err}
	}
	if err := bracket.CheckTransition(current, status); err != nil {
		return nil, fmt.Errorf("update tournament %d: %w", id, err)
	}

	created, err := bracket.ParseTime(row.DateCreated)
	if err != nil {
		return nil, &CorruptRecordError{ID: id, Err: fmt.Errorf("date_created: %w", err)}
	}
	previous, err := bracket.ParseTime(row.LastUpdated)
	if err != nil {
		return nil, &CorruptRecordError{ID: id, Err: fmt.Errorf("last_updated: %w", err)}
	}

	// last_updated must strictly advance even if the clock did not.
	now := s.clock()
	if !now.After(previous) {
		now = previous.Add(time.Microsecond)
	}

	err = s.store.UpdateTx(ctx, tx, store.UpdateParams{
		ID:               id,
		Data:             string(encoded),
		Status:           string(status),
		LastUpdated:      bracket.FormatTime(now),
		ExpectedRevision: row.Revision,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.UpdateConflicts.Inc()
		}
		return nil, fmt.Errorf("update tournament %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, &store.StorageError{Op: "commit update", Err: err}
	}

	metrics.TournamentsUpdated.Inc()
	slog.Info("tournament updated", "id", id, "status", status, "revision", row.Revision+1)

	return &bracket.Tournament{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Type:        row.Type,
		League:      row.League,
		Status:      status,
		DateCreated: created,
		LastUpdated: now,
		Revision:    row.Revision + 1,
		Data:        data.Clone(),
	}, nil
}

func decodeRow(row *store.TournamentRow) (*bracket.Tournament, error) {
	corrupt := func(err error) error {
		return &CorruptRecordError{ID: row.ID, Err: err}
	}

	status, err := bracket.ParseStatus(row.Status)
	if err != nil {
		return nil, corrupt(err)
	}
	created, err := bracket.ParseTime(row.DateCreated)
	if err != nil {
		return nil, corrupt(fmt.Errorf("date_created: %w", err))
	}
	updated, err := bracket.ParseTime(row.LastUpdated)
	if err != nil {
		return nil, corrupt(fmt.Errorf("last_updated: %w", err))
	}
	doc, err := bracket.DecodeDocument([]byte(row.Data))
	if err != nil {
		return nil, corrupt(err)
	}

	return &bracket.Tournament{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Type:        row.Type,
		League:      row.League,
		Status:      status,
		DateCreated: created,
		LastUpdated: updated,
		Revision:    row.Revision,
		Data:        doc,
	}, nil
}
