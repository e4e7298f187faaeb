package media

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	keep, err := store.Store(ctx, "keep.jpg", strings.NewReader("k"))
	require.NoError(t, err)
	orphan, err := store.Store(ctx, "orphan.png", strings.NewReader("o"))
	require.NoError(t, err)

	referenced := func(name string) bool { return name == keep }

	res, err := Sweep(ctx, store, referenced, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, []string{orphan}, res.Orphans)
	assert.Equal(t, 0, res.Removed)
	assert.True(t, store.Exists(orphan), "dry run keeps files")

	res, err = Sweep(ctx, store, referenced, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.False(t, store.Exists(orphan))
	assert.True(t, store.Exists(keep))
}
