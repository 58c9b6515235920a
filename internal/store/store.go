// Package store keeps a ledger of reconstruction outcomes in badger, keyed
// by job id. Only the latest outcome per job is retained.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no record exists for a job.
var ErrNotFound = errors.New("not found")

const jobPrefix = "job/"

// Record is the persisted outcome of one job.
type Record struct {
	JobID       string    `json:"job_id"`
	Fingerprint string    `json:"fingerprint"`
	RunID       string    `json:"run_id"`
	Threshold   int       `json:"threshold"`
	Total       int       `json:"total"`
	Secret      string    `json:"secret,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a badger-backed ledger. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens or creates a ledger in dir.
func Open(dir string) (*Store, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a ledger that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores rec, replacing any earlier record for the same job.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.JobID == "" {
		return errors.New("record has no job id")
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.JobID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(jobKey(rec.JobID), val)
	})
}

// Get returns the record for jobID or ErrNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(jobKey(jobID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", jobID, err)
	}
	return &rec, nil
}

// List returns all records ordered by job id.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func jobKey(jobID string) []byte {
	return []byte(jobPrefix + jobID)
}
