package buffer

import (
	"fmt"
	"io"
	"os"
)

// SegmentReport describes one on-disk segment file as found by Inspect, independent
// of whether a Disk buffer currently has it open.
type SegmentReport struct {
	ID            uint64
	Path          string
	SizeBytes     int64
	RecordCount   int
	TruncatedTail bool // a partial record sits at the end of the file
	Corrupt       bool // a record's checksum didn't match its payload
}

// CursorReport mirrors the persisted read checkpoint (spec §4.2's "cursor" file).
type CursorReport struct {
	SegmentID uint64
	Offset    int64
	Present   bool
}

// Report is the result of inspecting a disk buffer's directory: every segment file
// found, their record counts and any corruption, and the persisted read cursor.
type Report struct {
	Dir      string
	Segments []SegmentReport
	Cursor   CursorReport
}

// Inspect reads every segment file under dir without modifying anything, for
// cmd/vector-bufferctl's read-only diagnostic mode.
func Inspect(dir string) (Report, error) {
	ids, err := listSegments(dir)
	if err != nil {
		return Report{}, fmt.Errorf("buffer: inspect %s: %w", dir, err)
	}

	report := Report{Dir: dir}
	for _, id := range ids {
		seg, err := inspectSegment(dir, id)
		if err != nil {
			return Report{}, err
		}
		report.Segments = append(report.Segments, seg)
	}

	if cp, ok, err := readCheckpoint(dir); err != nil {
		return Report{}, fmt.Errorf("buffer: inspect %s: read checkpoint: %w", dir, err)
	} else if ok {
		report.Cursor = CursorReport{SegmentID: cp.SegmentID, Offset: cp.Offset, Present: true}
	}
	return report, nil
}

func inspectSegment(dir string, id uint64) (SegmentReport, error) {
	path := segmentPath(dir, id)
	info, err := os.Stat(path)
	if err != nil {
		return SegmentReport{}, fmt.Errorf("buffer: stat segment %d: %w", id, err)
	}
	report := SegmentReport{ID: id, Path: path, SizeBytes: info.Size()}

	f, err := os.Open(path)
	if err != nil {
		return SegmentReport{}, fmt.Errorf("buffer: open segment %d: %w", id, err)
	}
	defer f.Close()

	if err := readSegmentHeader(f); err != nil {
		return SegmentReport{}, fmt.Errorf("buffer: segment %d: %w", id, err)
	}

	for {
		_, err := readRecord(f)
		switch {
		case err == nil:
			report.RecordCount++
		case err == io.EOF:
			return report, nil
		case err == errTruncatedRecord:
			report.TruncatedTail = true
			return report, nil
		case err == errCorruptRecord:
			report.Corrupt = true
			return report, nil
		default:
			return SegmentReport{}, fmt.Errorf("buffer: segment %d: %w", id, err)
		}
	}
}

// Repair opens and immediately closes a Disk buffer rooted at dir: OpenDisk's own
// recovery path truncates any partial tail record on the newest segment (spec §4.2's
// crash-recovery behavior), which is the only form of on-disk repair this format
// supports. Corruption in a record before the tail is reported, never silently
// dropped — Repair does not touch it.
func Repair(dir string) (Report, error) {
	d, err := OpenDisk(DiskConfig{Dir: dir})
	if err != nil {
		return Report{}, fmt.Errorf("buffer: repair %s: %w", dir, err)
	}
	d.Close()
	return Inspect(dir)
}
