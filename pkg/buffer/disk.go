package buffer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vectorflow/vector/pkg/event"
	"github.com/vectorflow/vector/pkg/obs"
)

// FlushPolicy controls when a disk buffer's write segment is fsynced and its read
// checkpoint persisted (spec §4.2). A write only "resolves successfully" once it is
// durable under the chosen policy.
type FlushPolicy uint8

const (
	FlushEveryWrite FlushPolicy = iota
	FlushEveryN
	FlushEveryInterval
)

// OverflowPolicy controls what happens when a disk buffer's total size would exceed
// DiskConfig.MaxTotalBytes.
type OverflowPolicy uint8

const (
	// OverflowBlock suspends Send until a consumer frees space.
	OverflowBlock OverflowPolicy = iota
	// OverflowDropOldestSegment deletes the oldest fully-written segment that isn't
	// currently being read or written to make room, dropping its buffered events.
	OverflowDropOldestSegment
)

// DiskConfig configures a Disk buffer's directory layout, durability, and overflow
// behavior.
type DiskConfig struct {
	Dir           string
	SegmentBytes  int64 // threshold at which the write cursor rolls to a new segment
	MaxTotalBytes int64 // 0 = unbounded
	Flush         FlushPolicy
	FlushEveryN   int
	FlushInterval time.Duration
	Overflow      OverflowPolicy
}

func (c DiskConfig) withDefaults() DiskConfig {
	if c.SegmentBytes <= 0 {
		c.SegmentBytes = 16 << 20
	}
	if c.Flush == FlushEveryN && c.FlushEveryN <= 0 {
		c.FlushEveryN = 1
	}
	if c.Flush == FlushEveryInterval && c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	return c
}

// Disk is the segmented append-only log buffer described in spec §4.2.
type Disk struct {
	cfg  DiskConfig
	mu   sync.Mutex
	cond *sync.Cond

	segments []uint64 // ascending segment ids currently on disk

	writeFile   *os.File
	writeSegID  uint64
	writeOffset int64

	readFile   *os.File
	readSegID  uint64
	readOffset int64

	totalBytes      int64
	count           int64
	unflushedWrites int
	lastFlush       time.Time

	closed bool
}

// OpenDisk opens (or creates) a disk buffer rooted at cfg.Dir, replaying any existing
// segments and restoring the read cursor from the last persisted checkpoint.
func OpenDisk(cfg DiskConfig) (*Disk, error) {
	cfg = cfg.withDefaults()
	if cfg.Dir == "" {
		return nil, fmt.Errorf("buffer: disk config requires Dir")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("buffer: create dir %s: %w", cfg.Dir, err)
	}

	d := &Disk{cfg: cfg, lastFlush: time.Now()}
	d.cond = sync.NewCond(&d.mu)
	if err := d.recover(); err != nil {
		return nil, err
	}
	return d, nil
}

// segmentPath follows the on-disk layout from spec §6:
// <data_dir>/buffers/<component_key>/<segment_id>.dat — the component_key directory
// is DiskConfig.Dir, chosen by whoever constructs the Disk buffer (pkg/topology).
func segmentPath(dir string, id uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%020d.dat", id))
}

func listSegments(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".dat") {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, ".dat"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (d *Disk) recover() error {
	ids, err := listSegments(d.cfg.Dir)
	if err != nil {
		return fmt.Errorf("buffer: list segments: %w", err)
	}

	if len(ids) == 0 {
		f, err := createSegment(d.cfg.Dir, 0)
		if err != nil {
			return err
		}
		d.segments = []uint64{0}
		d.writeFile = f
		d.writeSegID = 0
		d.writeOffset = segmentHeaderLen
		return d.openReadSegment(0, segmentHeaderLen)
	}
	d.segments = ids

	lastID := ids[len(ids)-1]
	if err := d.openWriteSegmentWithTruncation(lastID); err != nil {
		return err
	}

	for _, id := range ids {
		info, err := os.Stat(segmentPath(d.cfg.Dir, id))
		if err == nil {
			d.totalBytes += info.Size()
		}
	}

	readSeg, readOffset := ids[0], int64(segmentHeaderLen)
	if cp, ok, err := readCheckpoint(d.cfg.Dir); err == nil && ok && containsID(ids, cp.SegmentID) {
		readSeg, readOffset = cp.SegmentID, cp.Offset
	}
	if err := d.openReadSegment(readSeg, readOffset); err != nil {
		return err
	}

	return d.countUnread()
}

func containsID(ids []uint64, target uint64) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// openWriteSegmentWithTruncation opens the last segment on disk for appending,
// scanning forward from its header to find the last valid record boundary. A
// partially-written tail record (broken framing, or a checksum failure on the final
// record) is discarded by truncating the file to that boundary — the crash-recovery
// behavior spec §4.2 requires. A checksum failure on a record with more data after
// it is left in place for Recv to skip and count.
func (d *Disk) openWriteSegmentWithTruncation(id uint64) error {
	path := segmentPath(d.cfg.Dir, id)
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("buffer: open write segment %d: %w", id, err)
	}
	if err := readSegmentHeader(f); err != nil {
		f.Close()
		return err
	}

	offset := int64(segmentHeaderLen)
	for {
		payload, err := readRecord(f)
		if err == io.EOF {
			break
		}
		if err == errCorruptRecord {
			// The framing held, so the cursor sits right past the bad record; only
			// a bad final record counts as a torn tail.
			pos, serr := f.Seek(0, io.SeekCurrent)
			info, ierr := f.Stat()
			if serr == nil && ierr == nil && pos < info.Size() {
				offset = pos
				continue
			}
		}
		if err != nil {
			break // truncated or corrupt tail record: stop, discard it below
		}
		offset += int64(recordHeaderLen + len(payload))
	}
	if err := f.Truncate(offset); err != nil {
		f.Close()
		return fmt.Errorf("buffer: truncate segment %d: %w", id, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	d.writeFile = f
	d.writeSegID = id
	d.writeOffset = offset
	return nil
}

func (d *Disk) openReadSegment(id uint64, offset int64) error {
	f, err := os.Open(segmentPath(d.cfg.Dir, id))
	if err != nil {
		return fmt.Errorf("buffer: open read segment %d: %w", id, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return err
	}
	d.readFile = f
	d.readSegID = id
	d.readOffset = offset
	return nil
}

// countUnread scans from the restored read cursor to the write cursor to recompute
// the in-memory record count, since that counter itself isn't persisted.
func (d *Disk) countUnread() error {
	f, err := os.Open(segmentPath(d.cfg.Dir, d.readSegID))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Seek(d.readOffset, io.SeekStart); err != nil {
		return err
	}

	segID := d.readSegID
	cur := f
	opened := false
	for {
		if _, err := readRecord(cur); err != nil && err != errCorruptRecord {
			if opened {
				cur.Close()
			}
			if err == io.EOF && segID != d.writeSegID {
				idx := indexOf(d.segments, segID)
				if idx < 0 || idx+1 >= len(d.segments) {
					break
				}
				segID = d.segments[idx+1]
				next, err := os.Open(segmentPath(d.cfg.Dir, segID))
				if err != nil {
					return err
				}
				if err := readSegmentHeader(next); err != nil {
					next.Close()
					return err
				}
				cur = next
				opened = true
				continue
			}
			break
		}
		d.count++
	}
	return nil
}

func indexOf(ids []uint64, target uint64) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

// blockUntil suspends the calling goroutine on d.cond until ready() holds, the
// buffer is closed, or ctx is done — translating ctx cancellation into a broadcast
// since sync.Cond has no native context support.
func (d *Disk) blockUntil(ctx context.Context, ready func() bool) error {
	if ready() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			d.cond.Broadcast()
			d.mu.Unlock()
		case <-stop:
		}
	}()
	defer close(stop)

	for !ready() {
		if d.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		d.cond.Wait()
	}
	return nil
}

func (d *Disk) Send(ctx context.Context, e event.Event) error {
	payload, err := event.EncodePayload(e)
	if err != nil {
		return fmt.Errorf("buffer: encode: %w", err)
	}
	recordSize := int64(recordHeaderLen + len(payload))

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	for d.cfg.MaxTotalBytes > 0 && d.totalBytes+recordSize > d.cfg.MaxTotalBytes {
		if d.cfg.Overflow == OverflowDropOldestSegment {
			if d.dropOldestSegmentLocked() {
				continue
			}
			return ErrDropped
		}
		fits := func() bool {
			return d.cfg.MaxTotalBytes <= 0 || d.totalBytes+recordSize <= d.cfg.MaxTotalBytes
		}
		if err := d.blockUntil(ctx, fits); err != nil {
			return err
		}
	}

	if d.writeOffset > segmentHeaderLen && d.writeOffset+recordSize > d.cfg.SegmentBytes {
		if err := d.rollSegmentLocked(); err != nil {
			return err
		}
	}

	n, err := writeRecord(d.writeFile, payload)
	if err != nil {
		return fmt.Errorf("buffer: write record: %w", err)
	}
	d.writeOffset += n
	d.totalBytes += n
	d.count++
	d.unflushedWrites++

	if d.shouldFlushLocked() {
		if err := d.flushLocked(); err != nil {
			return err
		}
	}

	d.cond.Broadcast()
	return nil
}

// Recv dequeues the next readable record. A record that fails its checksum, or
// whose framing is broken outright, is never returned to the caller: per spec §7's
// read-error handling, Recv skips it, counts it, and keeps scanning forward for the
// next good record rather than failing the consumer.
func (d *Disk) Recv(ctx context.Context) (event.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		if d.closed {
			return event.Event{}, ErrClosed
		}
		if err := d.blockUntil(ctx, d.hasUnreadLocked); err != nil {
			return event.Event{}, err
		}

		payload, err := readRecord(d.readFile)
		switch {
		case err == nil:
			pos, serr := d.readFile.Seek(0, io.SeekCurrent)
			if serr != nil {
				return event.Event{}, serr
			}
			d.readOffset = pos
			_ = writeCheckpoint(d.cfg.Dir, checkpoint{SegmentID: d.readSegID, Offset: d.readOffset})
			d.count--

			e, derr := event.DecodePayload(payload)
			if derr != nil {
				return event.Event{}, fmt.Errorf("buffer: decode: %w", derr)
			}
			d.cond.Broadcast()
			return e, nil

		case err == io.EOF:
			if !d.advanceReadSegmentLocked() {
				return event.Event{}, ErrClosed
			}

		case err == errCorruptRecord:
			// readRecord already consumed the full bad record (header and payload)
			// before the checksum check failed, so the cursor sits right past it.
			d.skipUnreadableLocked()

		case err == errTruncatedRecord:
			// Framing itself is broken: there's no reliable length to skip by, so
			// abandon whatever is left of this segment rather than guess at one.
			if !d.advanceReadSegmentLocked() {
				// No later segment to fall back to — this is the live write segment.
				// Drop the unreadable tail and wait for writes to land past it.
				d.readOffset = d.writeOffset
				_ = writeCheckpoint(d.cfg.Dir, checkpoint{SegmentID: d.readSegID, Offset: d.readOffset})
			}
			d.countCorruptLocked()

		default:
			return event.Event{}, fmt.Errorf("buffer: read record: %w", err)
		}
	}
}

// skipUnreadableLocked records a corrupt or truncated record as permanently lost and
// advances the persisted read checkpoint past it.
func (d *Disk) skipUnreadableLocked() {
	pos, err := d.readFile.Seek(0, io.SeekCurrent)
	if err == nil {
		d.readOffset = pos
		_ = writeCheckpoint(d.cfg.Dir, checkpoint{SegmentID: d.readSegID, Offset: d.readOffset})
	}
	d.countCorruptLocked()
}

// countCorruptLocked accounts for one record that will never be delivered, so Len()
// doesn't permanently over-report by the number of records skipped this way.
func (d *Disk) countCorruptLocked() {
	if d.count > 0 {
		d.count--
	}
	obs.BufferCorruptRecordsTotal.WithLabelValues(filepath.Base(d.cfg.Dir)).Inc()
}

func (d *Disk) hasUnreadLocked() bool {
	if d.readSegID != d.writeSegID {
		return true
	}
	return d.readOffset < d.writeOffset
}

// advanceReadSegmentLocked moves the read cursor to the next segment, deleting the
// segment just finished since every record in it has now been consumed (spec §4.2).
func (d *Disk) advanceReadSegmentLocked() bool {
	idx := indexOf(d.segments, d.readSegID)
	if idx < 0 || idx+1 >= len(d.segments) {
		return false
	}
	oldID := d.readSegID
	next := d.segments[idx+1]

	f, err := os.Open(segmentPath(d.cfg.Dir, next))
	if err != nil {
		return false
	}
	if err := readSegmentHeader(f); err != nil {
		f.Close()
		return false
	}

	d.readFile.Close()
	if oldID != d.writeSegID {
		if info, statErr := os.Stat(segmentPath(d.cfg.Dir, oldID)); statErr == nil {
			d.totalBytes -= info.Size()
		}
		os.Remove(segmentPath(d.cfg.Dir, oldID))
		d.segments = append(d.segments[:idx], d.segments[idx+1:]...)
	}

	d.readFile = f
	d.readSegID = next
	d.readOffset = segmentHeaderLen
	return true
}

func (d *Disk) rollSegmentLocked() error {
	if err := d.writeFile.Close(); err != nil {
		return err
	}
	newID := d.writeSegID + 1
	f, err := createSegment(d.cfg.Dir, newID)
	if err != nil {
		return err
	}
	d.writeFile = f
	d.writeSegID = newID
	d.writeOffset = segmentHeaderLen
	d.segments = append(d.segments, newID)
	return nil
}

func (d *Disk) shouldFlushLocked() bool {
	switch d.cfg.Flush {
	case FlushEveryN:
		return d.unflushedWrites >= d.cfg.FlushEveryN
	case FlushEveryInterval:
		return time.Since(d.lastFlush) >= d.cfg.FlushInterval
	default:
		return true
	}
}

func (d *Disk) flushLocked() error {
	if err := d.writeFile.Sync(); err != nil {
		return fmt.Errorf("buffer: sync segment: %w", err)
	}
	d.unflushedWrites = 0
	d.lastFlush = time.Now()
	return writeCheckpoint(d.cfg.Dir, checkpoint{SegmentID: d.readSegID, Offset: d.readOffset})
}

// dropOldestSegmentLocked removes the oldest segment on disk that is neither the
// active write segment nor the active read segment, per the overflow policy in
// spec §4.2. It reports whether a segment was actually freed.
func (d *Disk) dropOldestSegmentLocked() bool {
	if len(d.segments) == 0 {
		return false
	}
	oldest := d.segments[0]
	if oldest == d.writeSegID || oldest == d.readSegID {
		return false
	}
	path := segmentPath(d.cfg.Dir, oldest)
	if info, err := os.Stat(path); err == nil {
		d.totalBytes -= info.Size()
	}
	d.count -= countRecords(path)
	os.Remove(path)
	d.segments = d.segments[1:]
	return true
}

func countRecords(path string) int64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	if err := readSegmentHeader(f); err != nil {
		return 0
	}
	var n int64
	for {
		if _, err := readRecord(f); err != nil {
			break
		}
		n++
	}
	return n
}

func (d *Disk) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.count < 0 {
		return 0
	}
	return int(d.count)
}

func (d *Disk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.writeFile.Sync()
	_ = writeCheckpoint(d.cfg.Dir, checkpoint{SegmentID: d.readSegID, Offset: d.readOffset})
	d.writeFile.Close()
	d.readFile.Close()
	d.cond.Broadcast()
}

func (d *Disk) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

var _ Buffer = (*Disk)(nil)
