package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saorsa-labs/saorsa-fec/backend"
	"github.com/saorsa-labs/saorsa-fec/cid"
	"github.com/saorsa-labs/saorsa-fec/errs"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := backend.NewMemory()
	id := cid.Compute([]byte("h"), []byte("body"))

	require.NoError(t, m.Put(ctx, id, []byte("body")))

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), got)

	ok, err := m.Exists(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryPutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := backend.NewMemory()
	id := cid.Compute([]byte("h"), []byte("body"))

	require.NoError(t, m.Put(ctx, id, []byte("body")))
	require.NoError(t, m.Put(ctx, id, []byte("body")))

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), got)
}

func TestMemoryGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	m := backend.NewMemory()
	id := cid.Compute([]byte("h"), []byte("missing"))

	_, err := m.Get(ctx, id)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := backend.NewMemory()
	id := cid.Compute([]byte("h"), []byte("body"))
	require.NoError(t, m.Put(ctx, id, []byte("body")))

	require.NoError(t, m.Delete(ctx, id))
	ok, err := m.Exists(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMultiReplicatesAndFallsBackOnGet(t *testing.T) {
	ctx := context.Background()
	a := backend.NewMemory()
	b := backend.NewMemory()
	multi, err := backend.NewMulti(a, b)
	require.NoError(t, err)

	id := cid.Compute([]byte("h"), []byte("body"))
	require.NoError(t, multi.Put(ctx, id, []byte("body")))

	gotA, err := a.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), gotA)
	gotB, err := b.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), gotB)

	require.NoError(t, a.Delete(ctx, id))
	got, err := multi.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), got)
}

func TestNewMultiRejectsEmpty(t *testing.T) {
	_, err := backend.NewMulti()
	require.Error(t, err)
}
