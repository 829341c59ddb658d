// Package store is the storage service of graph documents. It is backed by a
// bbolt database, with records encoded as CBOR.
package store

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"src.shadegraph.dev/pkg/logutil"
	"src.shadegraph.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("store")

const (
	bucketGraph  = "graph"
	bucketDigest = "digest"
)

var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend for graph documents.
type DBStore interface {
	storedefs.Store
	Close() error
}

type dbStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db, now: time.Now}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	return st, err
}

// Close closes the store.
func (s *dbStore) Close() error {
	return s.db.Close()
}

var encMode = func() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()
