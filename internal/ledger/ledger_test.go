package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdconnect/internal/store"
)

func TestLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	require.NoError(t, l.Schedule(ctx, "A"))
	require.NoError(t, l.Schedule(ctx, "B"))

	next, err := l.PeekNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", next)

	require.NoError(t, l.Complete(ctx, "B"))
	require.NoError(t, l.Complete(ctx, "A"))

	next, err = l.PeekNext(ctx)
	require.NoError(t, err)
	assert.Empty(t, next, "ledger should be empty after completing both tasks")
}

func TestLedger_Mismatch(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	require.NoError(t, l.Schedule(ctx, "A"))

	err := l.Complete(ctx, "X")
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch), "error should be a MismatchError")
	assert.Equal(t, "A", mismatch.Expected)
	assert.Equal(t, "X", mismatch.Got)

	// The mismatch must not consume the pending task.
	next, err := l.PeekNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", next)
}

func TestLedger_CompleteOnEmpty(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	err := l.Complete(ctx, "A")
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestLedger_KeyDeletedWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	l := New(s)

	require.NoError(t, l.Schedule(ctx, "A"))
	require.NoError(t, l.Complete(ctx, "A"))

	_, err := s.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "ledger key should be removed once empty")
}

func TestLedger_PersistedAsJSONList(t *testing.T) {
	// Task names containing the old '+' delimiter must round-trip intact.
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	require.NoError(t, l.Schedule(ctx, "send+refresh"))

	next, err := l.PeekNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "send+refresh", next)
	require.NoError(t, l.Complete(ctx, "send+refresh"))
}
