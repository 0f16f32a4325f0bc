package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/tournament-tracker/internal/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyDocument = `{"teams":[],"rounds":[]}`

// setupTestDB creates a throwaway SQLite file and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", db.DSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err, "Failed to connect to test DB")

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func newRow(name string) *TournamentRow {
	return &TournamentRow{
		Name:        name,
		Description: "A test tournament",
		Type:        "single_elimination",
		Status:      "created",
		League:      "MLB",
		DateCreated: "2024-05-01T10:00:00.000000Z",
		LastUpdated: "2024-05-01T10:00:00.000000Z",
		Data:        emptyDocument,
	}
}

func TestInsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	row := newRow("Spring Cup")
	id, err := store.Insert(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, row.ID)

	fetched, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *row, *fetched)
	assert.Equal(t, int64(1), fetched.Revision)
}

func TestInsertAssignsFreshIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	seen := map[int64]bool{}
	for _, name := range []string{"A", "B", "C"} {
		id, err := store.Insert(ctx, newRow(name))
		require.NoError(t, err)
		assert.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)

	row, err := store.Get(context.Background(), 99)
	assert.Nil(t, row)
	assert.ErrorIs(t, err, ErrNotFound)

	var storageErr *StorageError
	assert.NotErrorAs(t, err, &storageErr)
}

func TestListSummariesInInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	empty, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"Zeta Cup", "Alpha Cup"} {
		_, err := store.Insert(ctx, newRow(name))
		require.NoError(t, err)
	}

	summaries, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, Summary{ID: 1, Name: "Zeta Cup", League: "MLB", Type: "single_elimination", Status: "created"}, summaries[0])
	assert.Equal(t, "Alpha Cup", summaries[1].Name)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	id, err := store.Insert(ctx, newRow("Spring Cup"))
	require.NoError(t, err)

	newData := `{"teams":[{"id":"t1","name":"One"}],"rounds":[]}`
	err = store.Update(ctx, UpdateParams{
		ID:          id,
		Data:        newData,
		Status:      "in_progress",
		LastUpdated: "2024-05-02T10:00:00.000000Z",
	})
	require.NoError(t, err)

	fetched, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, newData, fetched.Data)
	assert.Equal(t, "in_progress", fetched.Status)
	assert.Equal(t, "2024-05-02T10:00:00.000000Z", fetched.LastUpdated)
	assert.Equal(t, "2024-05-01T10:00:00.000000Z", fetched.DateCreated)
	assert.Equal(t, int64(2), fetched.Revision)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)

	err := store.Update(context.Background(), UpdateParams{
		ID:          7,
		Data:        emptyDocument,
		Status:      "in_progress",
		LastUpdated: "2024-05-02T10:00:00.000000Z",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWithStaleRevisionConflicts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	id, err := store.Insert(ctx, newRow("Spring Cup"))
	require.NoError(t, err)

	first := UpdateParams{ID: id, Data: emptyDocument, Status: "in_progress", LastUpdated: "2024-05-02T10:00:00.000000Z", ExpectedRevision: 1}
	require.NoError(t, store.Update(ctx, first))

	second := UpdateParams{ID: id, Data: emptyDocument, Status: "finished", LastUpdated: "2024-05-03T10:00:00.000000Z", ExpectedRevision: 1}
	assert.ErrorIs(t, store.Update(ctx, second), ErrConflict)

	fetched, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", fetched.Status)
	assert.Equal(t, int64(2), fetched.Revision)
}

func TestUpdateRejectsInvalidJSON(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	id, err := store.Insert(ctx, newRow("Spring Cup"))
	require.NoError(t, err)

	err = store.Update(ctx, UpdateParams{ID: id, Data: `{"teams": [`, Status: "in_progress", LastUpdated: "2024-05-02T10:00:00.000000Z"})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)

	fetched, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, emptyDocument, fetched.Data)
	assert.Equal(t, int64(1), fetched.Revision)
}

func TestUpdateTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	id, err := store.Insert(ctx, newRow("Spring Cup"))
	require.NoError(t, err)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	err = store.UpdateTx(ctx, tx, UpdateParams{ID: id, Data: emptyDocument, Status: "finished", LastUpdated: "2024-05-02T10:00:00.000000Z"})
	require.NoError(t, err)

	inTx, err := store.GetTx(ctx, tx, id)
	require.NoError(t, err)
	assert.Equal(t, "finished", inTx.Status)

	require.NoError(t, tx.Rollback())

	fetched, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "created", fetched.Status)
}
