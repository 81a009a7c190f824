package repository

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ak/clinicnote/constants"
)

func newTestRepo(t *testing.T) *SessionRepo {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepo(db, slog.New(slog.DiscardHandler))
}

func TestInsertAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Jane Doe", "Robert Smith", "Jane Doe"} {
		_, err := repo.Insert(ctx, SessionRecord{
			ClientName:  name,
			SessionDate: "2025-05-01",
			Filename:    "f.txt",
			ContentHash: HashContent(name),
			Status:      constants.SessionStatusProcessed,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Jane Doe", recent[0].ClientName, "newest first")
	assert.Equal(t, "Robert Smith", recent[1].ClientName)
}

func TestAlreadyProcessed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	hash := HashContent("transcript body")
	ok, err := repo.AlreadyProcessed(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	// A failed attempt does not count as processed.
	_, err = repo.Insert(ctx, SessionRecord{
		ClientName: "Jane Doe", SessionDate: "2025-05-01", Filename: "f.txt",
		ContentHash: hash, Status: constants.SessionStatusFailed, Error: "store down",
	})
	require.NoError(t, err)
	ok, err = repo.AlreadyProcessed(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Insert(ctx, SessionRecord{
		ClientName: "Jane Doe", SessionDate: "2025-05-01", Filename: "f.txt",
		ContentHash: hash, Status: constants.SessionStatusProcessed,
	})
	require.NoError(t, err)
	ok, err = repo.AlreadyProcessed(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, status := range []constants.SessionStatus{
		constants.SessionStatusProcessed,
		constants.SessionStatusProcessed,
		constants.SessionStatusFailed,
	} {
		_, err := repo.Insert(ctx, SessionRecord{
			ClientName: "Jane Doe", SessionDate: "2025-05-01", Filename: "f.txt",
			ContentHash: HashContent(string(rune('a' + i))), Status: status,
		})
		require.NoError(t, err)
	}

	processed, failed, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, failed)
}

func TestHashContentIsStable(t *testing.T) {
	assert.Equal(t, HashContent("same"), HashContent("same"))
	assert.NotEqual(t, HashContent("one"), HashContent("two"))
}
