package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfpforge/rfpforge/internal/domain"
)

func newTestSessionStore(t *testing.T) *SQLiteSessionStore {
	t.Helper()
	store, err := NewSQLiteSessionStore(filepath.Join(t.TempDir(), "data", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSessionRoundTrip(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	snap := &domain.Snapshot{
		SessionID: "sess-1",
		Section:   "financial",
		Worker:    "financial",
		ProposalState: map[string]string{
			"financial": "pricing breakdown",
			"strategy":  "win themes",
		},
		ContentKeys: map[string]string{
			"financial": "sessions/sess-1/financial_output_20260831_120000",
		},
	}
	require.NoError(t, store.PutSession(ctx, "sess-1", snap))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "financial", got.Section)
	assert.Equal(t, snap.ProposalState, got.ProposalState)
	assert.Equal(t, snap.ContentKeys, got.ContentKeys)
	assert.NotEmpty(t, got.UpdatedAt)
}

func TestSQLiteSessionReplaceKeepsLatest(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, "sess-1", &domain.Snapshot{
		ProposalState: map[string]string{"financial": "v1"},
	}))
	require.NoError(t, store.PutSession(ctx, "sess-1", &domain.Snapshot{
		ProposalState: map[string]string{"financial": "v2", "general": "narrative"},
	}))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ProposalState["financial"])
	assert.Equal(t, "narrative", got.ProposalState["general"])
}

func TestSQLiteSessionMissing(t *testing.T) {
	store := newTestSessionStore(t)

	_, err := store.GetSession(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
