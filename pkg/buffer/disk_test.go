package buffer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSendRecvRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Send(ctx, logEvent("a")))
	require.NoError(t, d.Send(ctx, logEvent("b")))
	assert.Equal(t, 2, d.Len())

	got, err := d.Recv(ctx)
	require.NoError(t, err)
	body, _ := got.Log()
	assert.Equal(t, "a", body.Fields["message"])
	assert.Equal(t, 1, d.Len())
}

func TestDiskRollsSegmentsAndReclaims(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir, SegmentBytes: segmentHeaderLen + recordHeaderLen + 40})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(ctx, logEvent("msg")))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	segCount := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".dat" {
			segCount++
		}
	}
	assert.Greater(t, segCount, 1)

	for i := 0; i < 5; i++ {
		_, err := d.Recv(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, d.Len())

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	segCount = 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".dat" {
			segCount++
		}
	}
	assert.Equal(t, 1, segCount, "all but the active write segment should have been reclaimed")
}

func TestDiskRecoversReadCursorAndDiscardsTornTail(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, d.Send(ctx, logEvent("one")))
	require.NoError(t, d.Send(ctx, logEvent("two")))

	_, err = d.Recv(ctx)
	require.NoError(t, err)
	d.Close()

	// Simulate a crash mid-write: append a truncated record header with no payload.
	f, err := os.OpenFile(segmentPath(dir, 0), os.O_RDWR|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 0, 0, 99, 0, 0, 0, 0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	d2, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, d2.Len())

	got, err := d2.Recv(ctx)
	require.NoError(t, err)
	body, _ := got.Log()
	assert.Equal(t, "two", body.Fields["message"])

	require.NoError(t, d2.Send(ctx, logEvent("three")))
}

func TestDiskRecvSkipsCorruptRecordAndContinues(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, d.Send(ctx, logEvent("one")))
	require.NoError(t, d.Send(ctx, logEvent("two")))
	d.Close()

	// Flip a byte in the first record's payload so its checksum no longer matches,
	// without changing its length — the framing around it stays intact.
	path := segmentPath(dir, 0)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[segmentHeaderLen+recordHeaderLen] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	d2, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)

	got, err := d2.Recv(ctx)
	require.NoError(t, err, "Recv should skip the corrupt record rather than fail")
	body, _ := got.Log()
	assert.Equal(t, "two", body.Fields["message"])
	assert.Equal(t, 0, d2.Len())
}

func TestDiskOverflowDropOldestSegment(t *testing.T) {
	dir := t.TempDir()
	recordSize := int64(segmentHeaderLen + recordHeaderLen + 40)
	d, err := OpenDisk(DiskConfig{
		Dir:           dir,
		SegmentBytes:  recordHeaderLen + 40,
		MaxTotalBytes: recordSize * 2,
		Overflow:      OverflowDropOldestSegment,
	})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		err := d.Send(ctx, logEvent("msg"))
		if err != nil {
			assert.ErrorIs(t, err, ErrDropped)
		}
	}
	assert.LessOrEqual(t, d.Len(), 2)
}

func TestDiskBlockPolicySuspendsUntilCancel(t *testing.T) {
	dir := t.TempDir()
	recordSize := int64(recordHeaderLen + 40)
	d, err := OpenDisk(DiskConfig{
		Dir:           dir,
		MaxTotalBytes: segmentHeaderLen + recordSize,
	})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, d.Send(ctx, logEvent("fills-cap")))

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = d.Send(cctx, logEvent("blocked"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDiskCloseThenSendReturnsErrClosed(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	d.Close()
	assert.True(t, d.Closed())

	err = d.Send(context.Background(), logEvent("late"))
	assert.ErrorIs(t, err, ErrClosed)
}
