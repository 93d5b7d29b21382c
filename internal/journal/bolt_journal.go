package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/samvad-httpkit/pkg/requests"
)

const (
	dispatchBucket = "dispatches"
	keyTimeBytes   = 8
)

// boltJournal implements a Store backed by BoltDB. Keys carry a big-endian
// start time prefix so cursor order is history order.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dispatchBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	j.lastCleanup.Store(time.Now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (j *boltJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores one dispatch record under a time-ordered key.
func (j *boltJournal) Append(d requests.Dispatch) error {
	if j == nil || j.db == nil {
		return nil
	}

	now := time.Now()
	if err := j.maybeCleanupExpired(now); err != nil {
		return err
	}

	if d.StartedAt.IsZero() {
		d.StartedAt = now.UTC()
	}

	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dispatch record: %w", err)
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dispatchBucket))
		if bucket == nil {
			return fmt.Errorf("dispatch bucket missing")
		}
		return bucket.Put(recordKey(d.StartedAt, d.ID), value)
	})
}

// Recent returns up to n records, newest first. Records older than the
// retention window are skipped even when cleanup has not run yet.
func (j *boltJournal) Recent(n int) ([]requests.Dispatch, error) {
	if j == nil || j.db == nil || n <= 0 {
		return nil, nil
	}

	now := time.Now()
	if err := j.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	cutoff := now.Add(-j.recordTTL)
	out := make([]requests.Dispatch, 0, n)
	err := j.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dispatchBucket))
		if bucket == nil {
			return fmt.Errorf("dispatch bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < n; k, v = cursor.Prev() {
			ts, ok := decodeKeyTime(k)
			if !ok {
				continue
			}
			if !ts.After(cutoff) {
				break
			}
			var d requests.Dispatch
			if err := json.Unmarshal(v, &d); err != nil {
				continue
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
func (j *boltJournal) maybeCleanupExpired(now time.Time) error {
	if j == nil || j.db == nil {
		return nil
	}

	last := time.Unix(j.lastCleanup.Load(), 0)
	if now.Sub(last) < j.cleanupInterval {
		return nil
	}

	j.cleanupMu.Lock()
	defer j.cleanupMu.Unlock()

	last = time.Unix(j.lastCleanup.Load(), 0)
	if now.Sub(last) < j.cleanupInterval {
		return nil
	}

	cutoff := now.Add(-j.recordTTL)
	err := j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dispatchBucket))
		if bucket == nil {
			return fmt.Errorf("dispatch bucket missing")
		}

		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			ts, ok := decodeKeyTime(k)
			if ok && ts.After(cutoff) {
				break
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		j.lastCleanup.Store(now.Unix())
	}
	return err
}

// recordKey builds the time prefix plus dispatch id so keys sort
// chronologically and never collide.
func recordKey(ts time.Time, id string) []byte {
	key := make([]byte, keyTimeBytes, keyTimeBytes+len(id))
	binary.BigEndian.PutUint64(key, uint64(ts.UnixNano()))
	return append(key, id...)
}

// decodeKeyTime decodes the start time prefix from a record key.
func decodeKeyTime(key []byte) (time.Time, bool) {
	if len(key) < keyTimeBytes {
		return time.Time{}, false
	}
	nanos := int64(binary.BigEndian.Uint64(key[:keyTimeBytes]))
	if nanos <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}
