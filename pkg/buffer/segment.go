package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

const (
	segmentMagic     = "VBUF"
	segmentVersion   = uint16(1)
	segmentHeaderLen = 8 // magic(4) + version(u16) + flags(u16)
	recordHeaderLen  = 8 // length(u32) + crc32c(u32)
)

var (
	errBadMagic         = errors.New("buffer: segment has wrong magic bytes")
	errBadVersion       = errors.New("buffer: segment has unsupported version")
	errTruncatedRecord  = errors.New("buffer: truncated tail record")
	errCorruptRecord    = errors.New("buffer: record checksum mismatch")
)

func createSegment(dir string, id uint64) (*os.File, error) {
	f, err := os.OpenFile(segmentPath(dir, id), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("buffer: create segment %d: %w", id, err)
	}
	if err := writeSegmentHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSegmentHeader(f *os.File) error {
	buf := make([]byte, segmentHeaderLen)
	copy(buf[0:4], segmentMagic)
	binary.BigEndian.PutUint16(buf[4:6], segmentVersion)
	binary.BigEndian.PutUint16(buf[6:8], 0)
	_, err := f.Write(buf)
	return err
}

// readSegmentHeader validates the header at the current file offset (which must be
// position 0) and leaves the cursor positioned just past it.
func readSegmentHeader(f *os.File) error {
	buf := make([]byte, segmentHeaderLen)
	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("buffer: read segment header: %w", err)
	}
	if string(buf[0:4]) != segmentMagic {
		return errBadMagic
	}
	if binary.BigEndian.Uint16(buf[4:6]) != segmentVersion {
		return errBadVersion
	}
	return nil
}

// writeRecord appends one framed record ([u32 length][u32 crc32c][payload]) and
// returns the number of bytes written, per spec §4.2's serialization format.
func writeRecord(f *os.File, payload []byte) (int64, error) {
	sum := crc32.Checksum(payload, castagnoli)
	header := make([]byte, recordHeaderLen)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(header[4:8], sum)
	if _, err := f.Write(header); err != nil {
		return 0, fmt.Errorf("buffer: write record header: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		return 0, fmt.Errorf("buffer: write record payload: %w", err)
	}
	return int64(recordHeaderLen + len(payload)), nil
}

// readRecord reads one framed record from r. It returns io.EOF when there is no
// further record at all, and errTruncatedRecord when a partial tail record is
// detected — the signal crash recovery uses to discard it (spec §4.2).
func readRecord(r io.Reader) ([]byte, error) {
	header := make([]byte, recordHeaderLen)
	n, err := io.ReadFull(r, header)
	if err == io.EOF && n == 0 {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errTruncatedRecord
	}
	length := binary.BigEndian.Uint32(header[0:4])
	sum := binary.BigEndian.Uint32(header[4:8])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errTruncatedRecord
	}
	if crc32.Checksum(payload, castagnoli) != sum {
		return nil, errCorruptRecord
	}
	return payload, nil
}
