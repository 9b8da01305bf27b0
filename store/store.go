package store

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/canopy-network/ballot/lib"
	"github.com/dgraph-io/badger/v4"
)

var (
	lastCommitKey = lib.JoinLenPrefix([]byte("a/")) // reserved key holding the height of the latest commit
	stateKey      = lib.JoinLenPrefix([]byte("s/")) // prefix designated for the contract state

	_ lib.StoreI = &Store{} // enforce the Store interface
)

/*
The Store is the persistence layer of the contract, built on top of a single BadgerDB instance.

All reads and writes go through a single read-write badger transaction (the 'writer'). Commit()
persists the writer and records the height, and may be called several times per height. Until then
every write is pending and can be thrown away with Discard().

Badger bounds the size of a transaction. When the writer is full it is flushed to disk and a fresh
writer continues, so writes pending before a flush can no longer be discarded.

Contract keys are namespaced under the state prefix so the reserved commit key can never be
shadowed by contract data.
*/

type Store struct {
	version uint64      // height the store was last committed at
	db      *badger.DB  // underlying database
	writer  *TxnWrapper // the shared read-write transaction that is committed at once
	log     lib.LoggerI // logger
	config  lib.StoreConfig
	mu      *sync.Mutex // guards the writer swap at commit
}

// NewStore() creates a new instance of a disk DB
func NewStore(config lib.StoreConfig, log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	path := filepath.Join(config.DataDirPath, config.DBName)
	opts := badger.DefaultOptions(path).
		WithMemTableSize(config.MemTableSize).
		WithValueLogFileSize(config.ValueLogFileSize)
	s, err := newStore(opts, config, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewStoreInMemory() creates a new instance of a mem DB
func NewStoreInMemory(log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	config := lib.StoreConfig{DBName: "memory", InMemory: true}
	s, err := newStore(badger.DefaultOptions("").WithInMemory(true), config, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newStore() opens badger with the options and loads the last committed height
func newStore(opts badger.Options, config lib.StoreConfig, log lib.LoggerI) (*Store, lib.ErrorI) {
	db, err := badger.Open(opts.WithLogger(newBadgerLogger(log)))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	s := &Store{db: db, log: log, config: config, mu: &sync.Mutex{}}
	s.resetWriter()
	bz, e := s.writer.Get(lastCommitKey)
	if e != nil {
		_ = db.Close()
		return nil, e
	}
	s.version = lib.ParseUint64(bz)
	log.Debugf("opened store %q at height %d", config.DBName, s.version)
	return s, nil
}

// Get() returns the value bytes for a key, (nil, nil) if it doesn't exist
func (s *Store) Get(key []byte) ([]byte, lib.ErrorI) {
	return s.writer.Get(lib.Append(stateKey, key))
}

// Set() sets the value bytes blob for a key
func (s *Store) Set(k, v []byte) lib.ErrorI { return s.set(lib.Append(stateKey, k), v) }

// Delete() removes the key from the store
func (s *Store) Delete(k []byte) lib.ErrorI {
	key := lib.Append(stateKey, k)
	if err := s.update(func(txn *badger.Txn) error { return txn.Delete(key) }); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

// set() writes a raw key to the writer
func (s *Store) set(key, value []byte) lib.ErrorI {
	if err := s.update(func(txn *badger.Txn) error { return txn.Set(key, value) }); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

// update() applies a write to the writer, flushing the writer and retrying once if badger reports it full
func (s *Store) update(write func(txn *badger.Txn) error) error {
	err := write(s.writer.db)
	if !errors.Is(err, badger.ErrTxnTooBig) {
		return err
	}
	if err = s.flush(); err != nil {
		return err
	}
	return write(s.writer.db)
}

// flush() persists the pending writes without moving the committed height
func (s *Store) flush() error {
	defer s.resetWriter()
	if err := s.writer.db.Commit(); err != nil {
		return err
	}
	s.log.Debugf("flushed a full write batch of %q at height %d", s.config.DBName, s.version)
	return nil
}

// Iterator() returns an object for scanning the state in lexicographical order
func (s *Store) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	it, err := s.writer.Iterator(lib.Append(stateKey, prefix))
	if err != nil {
		return nil, err
	}
	return &stripIterator{IteratorI: it, n: len(stateKey)}, nil
}

// RevIterator() returns an object for scanning the state in reverse lexicographical order
func (s *Store) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	it, err := s.writer.RevIterator(lib.Append(stateKey, prefix))
	if err != nil {
		return nil, err
	}
	return &stripIterator{IteratorI: it, n: len(stateKey)}, nil
}

// NewTxn() returns a write overlay on top of the store that may be written or discarded
func (s *Store) NewTxn() lib.StoreTxnI { return NewTxn(s) }

// Version() returns the height of the last commit
func (s *Store) Version() uint64 { return s.version }

// Commit() records the height and atomically persists every pending write
func (s *Store) Commit(height uint64) lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.set(lastCommitKey, lib.FormatUint64(height)); err != nil {
		return err
	}
	if err := s.writer.db.Commit(); err != nil {
		s.resetWriter()
		return ErrCommitDB(err)
	}
	s.version = height
	s.resetWriter()
	return nil
}

// Discard() drops all writes since the last commit
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Close()
	s.resetWriter()
}

// Close() discards the pending writes and gracefully closes the database
func (s *Store) Close() lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Close()
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// resetWriter() opens a fresh read-write transaction
func (s *Store) resetWriter() { s.writer = NewTxnWrapper(s.db.NewTransaction(true), s.log) }

// stripIterator removes the namespace prefix from the keys of the wrapped iterator
type stripIterator struct {
	lib.IteratorI
	n int
}

func (s *stripIterator) Key() []byte { return s.IteratorI.Key()[s.n:] }
