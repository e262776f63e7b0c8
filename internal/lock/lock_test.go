package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquire_Exclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := Acquire(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileName), first.Path())

	_, err = Acquire(dir)
	require.ErrorIs(t, err, ErrHeld)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release(), "second release is a no-op")

	again, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
