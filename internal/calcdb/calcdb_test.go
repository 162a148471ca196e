package calcdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatabase_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := New(nil)

	// Unconnected access fails.
	_, err := db.Add(1, 2)
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = db.Query()
	require.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, db.Connect(ctx))

	sum, err := db.Add(2, 3)
	require.NoError(t, err)
	require.Equal(t, 5, sum)

	result, err := db.Query()
	require.NoError(t, err)
	require.Equal(t, "fake query result", result)

	require.NoError(t, db.Disconnect(ctx))
	require.NoError(t, db.Disconnect(ctx)) // idempotent

	_, err = db.Add(1, 1)
	require.ErrorIs(t, err, ErrNotConnected)
}
