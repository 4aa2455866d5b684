package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfpforge/rfpforge/internal/domain"
)

func TestBlobKey(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	key := BlobKey("sess-1", "financial_output", ts)
	assert.Equal(t, "sessions/sess-1/financial_output_20260831_143005", key)
}

func TestMemoryObjectStoreContract(t *testing.T) {
	s := NewMemoryObjectStore()
	ctx := context.Background()

	_, err := s.GetBlob(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.PutBlob(ctx, "k", []byte("v1"), "text/plain", nil))
	require.NoError(t, s.PutBlob(ctx, "k", []byte("v2"), "text/plain", nil))

	data, err := s.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	// The store holds its own copy.
	data[0] = 'X'
	again, err := s.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(again))
}

func TestMemorySessionStoreContract(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	_, err := s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	snap := &domain.Snapshot{
		Section:       "financial",
		Worker:        "financial",
		ProposalState: map[string]string{"financial": "pricing"},
		ContentKeys:   map[string]string{"financial": "sessions/s/k"},
	}
	require.NoError(t, s.PutSession(ctx, "sess-1", snap))

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "pricing", got.ProposalState["financial"])
	assert.NotEmpty(t, got.UpdatedAt)

	// Mutating the returned snapshot must not leak into the store.
	got.ProposalState["financial"] = "mutated"
	fresh, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "pricing", fresh.ProposalState["financial"])
}
