package buffer

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
)

// checkpointFileName matches spec §6's disk buffer layout: a "cursor" file holding
// the last committed read offset as [u64 segment_id][u64 byte_offset][u32 crc32c].
const checkpointFileName = "cursor"

// checkpoint is the persisted read-cursor position restored on startup (spec §4.2).
type checkpoint struct {
	SegmentID uint64
	Offset    int64
}

func checkpointPath(dir string) string {
	return filepath.Join(dir, checkpointFileName)
}

// writeCheckpoint persists cp via a temp-file-then-rename so a crash mid-write never
// leaves a half-written checkpoint behind for the next startup to trip over.
func writeCheckpoint(dir string, cp checkpoint) error {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint64(buf[0:8], cp.SegmentID)
	binary.BigEndian.PutUint64(buf[8:16], uint64(cp.Offset))
	sum := crc32.Checksum(buf[0:16], castagnoli)
	binary.BigEndian.PutUint32(buf[16:20], sum)

	tmp := checkpointPath(dir) + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, checkpointPath(dir))
}

// readCheckpoint returns ok=false if no checkpoint exists or it failed its checksum,
// in which case the caller falls back to the oldest segment on disk.
func readCheckpoint(dir string) (checkpoint, bool, error) {
	data, err := os.ReadFile(checkpointPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return checkpoint{}, false, nil
		}
		return checkpoint{}, false, err
	}
	if len(data) != 20 {
		return checkpoint{}, false, nil
	}
	sum := crc32.Checksum(data[0:16], castagnoli)
	if binary.BigEndian.Uint32(data[16:20]) != sum {
		return checkpoint{}, false, nil
	}
	return checkpoint{
		SegmentID: binary.BigEndian.Uint64(data[0:8]),
		Offset:    int64(binary.BigEndian.Uint64(data[8:16])),
	}, true, nil
}
