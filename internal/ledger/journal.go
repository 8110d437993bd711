package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var recordBucket = []byte("records")

// Journal keeps a local copy of every anchored record and its receipt so a
// result evicted from the in-memory store can still be summarized.
type Journal struct {
	db *bolt.DB
}

type journalEntry struct {
	Record  Record  `json:"record"`
	Receipt Receipt `json:"receipt"`
}

// OpenJournal opens (or creates) the receipt journal at path.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal bucket: %w", err)
	}
	return &Journal{db: db}, nil
}

// Put stores a record with its receipt under the record id.
func (j *Journal) Put(record Record, receipt Receipt) error {
	data, err := json.Marshal(journalEntry{Record: record, Receipt: receipt})
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordBucket).Put([]byte(record.ID), data)
	})
}

// Get returns the journaled record and receipt for an id, or ErrNotFound.
func (j *Journal) Get(id string) (*Record, *Receipt, error) {
	var entry journalEntry
	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recordBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, nil, err
	}
	return &entry.Record, &entry.Receipt, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
