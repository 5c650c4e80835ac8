package buffer

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectReportsRecordCountsAndCursor(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, d.Send(ctx, logEvent("a")))
	require.NoError(t, d.Send(ctx, logEvent("b")))
	_, err = d.Recv(ctx)
	require.NoError(t, err)
	d.Close()

	report, err := Inspect(dir)
	require.NoError(t, err)
	require.Len(t, report.Segments, 1)
	assert.Equal(t, 2, report.Segments[0].RecordCount)
	assert.False(t, report.Segments[0].Corrupt)
	assert.False(t, report.Segments[0].TruncatedTail)
	assert.True(t, report.Cursor.Present)
}

func TestInspectDetectsTruncatedTailRecord(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, d.Send(context.Background(), logEvent("a")))
	d.Close()

	path := segmentPath(dir, 0)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-2))

	report, err := Inspect(dir)
	require.NoError(t, err)
	require.Len(t, report.Segments, 1)
	assert.True(t, report.Segments[0].TruncatedTail)
}

func TestRepairDiscardsTruncatedTailAndLeavesPriorRecordsIntact(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, d.Send(context.Background(), logEvent("a")))
	require.NoError(t, d.Send(context.Background(), logEvent("b")))
	d.Close()

	path := segmentPath(dir, 0)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-2))

	report, err := Repair(dir)
	require.NoError(t, err)
	require.Len(t, report.Segments, 1)
	assert.Equal(t, 1, report.Segments[0].RecordCount)
	assert.False(t, report.Segments[0].TruncatedTail)

	d2, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, d2.Len())
	d2.Close()
}
