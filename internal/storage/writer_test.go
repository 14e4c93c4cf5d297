package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBatchWriter_CloseLeavesNoGoroutinesRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Enqueue(ctx, UpsertFileMetadata{{Path: "leak.go", Language: "go"}}))
	require.NoError(t, s.Close())
}

func TestBatchWriter_FlushIsIdempotentAfterNoWrites(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Flush(context.Background()))
	require.NoError(t, s.Flush(context.Background()))
}

func TestBatchWriter_CloseTwiceDoesNotPanic(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
