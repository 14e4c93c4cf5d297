package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	version, err := SchemaVersion(s.DB())
	require.NoError(t, err)
	require.Equal(t, len(migrations)-1, version)

	var tableCount int
	row := s.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='file_metadata'`)
	require.NoError(t, row.Scan(&tableCount))
	require.Equal(t, 1, tableCount)
}

func TestOpen_IsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	version, err := SchemaVersion(s2.DB())
	require.NoError(t, err)
	require.Equal(t, len(migrations)-1, version)
}

func TestEnqueueAndFlush_UpsertsFileMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cmd := UpsertFileMetadata{{
		Path:          "main.go",
		Language:      "go",
		FileSize:      1024,
		ContentHash:   42,
		MTimeSecs:     1700000000,
		LastScannedAt: 1700000001,
	}}
	require.NoError(t, s.Enqueue(ctx, cmd))
	require.NoError(t, s.Flush(ctx))

	var language string
	row := s.DB().QueryRowContext(ctx, `SELECT language FROM file_metadata WHERE path = ?`, "main.go")
	require.NoError(t, row.Scan(&language))
	require.Equal(t, "go", language)
}

func TestEnqueue_UpsertOverwritesPriorRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Enqueue(ctx, UpsertFileMetadata{{Path: "a.go", Language: "go", ContentHash: 1}}))
	require.NoError(t, s.Enqueue(ctx, UpsertFileMetadata{{Path: "a.go", Language: "go", ContentHash: 2}}))
	require.NoError(t, s.Flush(ctx))

	var count int
	row := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM file_metadata WHERE path = ?`, "a.go")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)

	var hash int64
	row = s.DB().QueryRowContext(ctx, `SELECT content_hash FROM file_metadata WHERE path = ?`, "a.go")
	require.NoError(t, row.Scan(&hash))
	require.Equal(t, int64(2), hash)
}

func TestBatchWriter_FlushCommitsBatchSizeRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := make(UpsertFileMetadata, writerBatchSize)
	for i := range rows {
		rows[i] = FileMetadataRow{Path: fmt.Sprintf("file%d.go", i), Language: "go"}
	}
	require.NoError(t, s.Enqueue(ctx, rows))
	require.NoError(t, s.Flush(ctx))

	var count int
	row := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM file_metadata`)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, writerBatchSize, count)
}

func TestQueryPage_PaginatesByKeyset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := UpsertFileMetadata{
		{Path: "a.go", Language: "go"},
		{Path: "b.go", Language: "go"},
		{Path: "c.go", Language: "go"},
	}
	require.NoError(t, s.Enqueue(ctx, rows))
	require.NoError(t, s.Flush(ctx))

	page1, err := s.QueryPage(ctx, "file_metadata", "path", "", nil, "", 2)
	require.NoError(t, err)
	require.Len(t, page1.Rows, 2)
	require.True(t, page1.HasMore)

	page2, err := s.QueryPage(ctx, "file_metadata", "path", "", nil, page1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Rows, 1)
	require.False(t, page2.HasMore)
}
