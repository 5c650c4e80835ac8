package reloadlog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vectorflow/vector/pkg/reload"
)

var bucketReloads = []byte("reloads")

// Record is one persisted reload attempt: the plan that was computed and whether it
// was applied or rolled back.
type Record struct {
	Plan      reload.Plan
	Applied   bool
	Error     string
	Timestamp time.Time
}

// Store is a bbolt-backed append-only log of reload Records, keyed by generation so
// List returns them in the order they were applied.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the reload log database under dataDir.
func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "reloadlog.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("reloadlog: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReloads)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reloadlog: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists plan's outcome under its generation, satisfying reload.AuditLog.
// Generations are expected to be applied in increasing order by the Reloader; Append
// does not itself enforce that.
func (s *Store) Append(plan reload.Plan, applied bool, errMsg string) error {
	return s.append(Record{Plan: plan, Applied: applied, Error: errMsg, Timestamp: time.Now()})
}

func (s *Store) append(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("reloadlog: marshal record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReloads)
		return b.Put(generationKey(r.Plan.Generation), data)
	})
}

// List returns every persisted record in ascending generation order.
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReloads)
		return b.ForEach(func(_, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("reloadlog: unmarshal record: %w", err)
			}
			records = append(records, r)
			return nil
		})
	})
	return records, err
}

// Latest returns the most recently appended record, or ok=false if the log is empty.
func (s *Store) Latest() (Record, bool, error) {
	var r Record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketReloads).Cursor()
		_, v := c.Last()
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &r)
	})
	return r, found, err
}

func generationKey(generation uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, generation)
	return key
}
