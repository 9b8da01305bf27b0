package fsm

import (
	"github.com/canopy-network/ballot/lib"
)

// StateMachine is the voting contract: it owns the vote ledger persisted in the store and the rules that mutate it
// the host supplies the current block height and serializes every call
type StateMachine struct {
	store lib.RWStoreI

	height  uint64             // the current block height supplied by the host
	events  *lib.EventsTracker // events emitted by the transaction being applied
	Config  lib.Config
	Metrics *lib.Metrics
	log     lib.LoggerI
}

// New() creates a new instance of a StateMachine
// if the store holds no deployment, the administrator is read from the genesis file
func New(c lib.Config, store lib.StoreI, metrics *lib.Metrics, log lib.LoggerI) (*StateMachine, lib.ErrorI) {
	sm := &StateMachine{
		events:  new(lib.EventsTracker),
		Config:  c,
		Metrics: metrics,
		log:     log,
	}
	return sm, sm.Initialize(store)
}

// Initialize() loads the height from the store and deploys from genesis if needed
func (s *StateMachine) Initialize(db lib.StoreI) lib.ErrorI {
	s.height, s.store = db.Version(), db
	ledger, err := s.GetLedger()
	if err != nil {
		return err
	}
	if ledger.Administrator != "" {
		s.log.Infof("Loaded contract at height %d with administrator %s", s.height, ledger.Administrator)
		return nil
	}
	return s.NewFromGenesisFile()
}

// Height() returns the current block height
func (s *StateMachine) Height() uint64 { return s.height }

// SetHeight() moves the current block height forward; heights never decrease
func (s *StateMachine) SetHeight(height uint64) lib.ErrorI {
	if height < s.height {
		return ErrHeightNotIncreasing(s.height, height)
	}
	s.height = height
	s.Metrics.UpdateHeight(height)
	return nil
}

// Events() returns the event tracker of the state machine
func (s *StateMachine) Events() *lib.EventsTracker { return s.events }

// Store() returns the store the state machine currently reads and writes
func (s *StateMachine) Store() lib.RWStoreI { return s.store }

// SetStore() sets the store the state machine reads and writes
func (s *StateMachine) SetStore(store lib.RWStoreI) { s.store = store }

// Set() upserts a key-value pair under a key
func (s *StateMachine) Set(k, v []byte) lib.ErrorI { return s.store.Set(k, v) }

// Get() retrieves a key-value pair under a key
// NOTE: returns (nil, nil) if no value is found for that key
func (s *StateMachine) Get(key []byte) ([]byte, lib.ErrorI) { return s.store.Get(key) }

// Delete() deletes a key-value pair under a key
func (s *StateMachine) Delete(key []byte) lib.ErrorI { return s.store.Delete(key) }

// IterateAndExecute() creates an iterator and executes a callback function for each key-value pair
func (s *StateMachine) IterateAndExecute(prefix []byte, callback func(key, value []byte) lib.ErrorI) lib.ErrorI {
	it, err := s.store.Iterator(prefix)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err = callback(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll() deletes every key under a prefix
// keys are collected first as the iterator must be closed before writing
func (s *StateMachine) DeleteAll(prefix []byte) lib.ErrorI {
	var keys [][]byte
	if err := s.IterateAndExecute(prefix, func(key, _ []byte) lib.ErrorI {
		keys = append(keys, key)
		return nil
	}); err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// TxnWrap() is an atomicity and consistency feature that enables easy rollback of changes by discarding the transaction if an error occurs
// the caller must restore the returned parent with SetStore() when done
func (s *StateMachine) TxnWrap() (txn lib.StoreTxnI, parent lib.RWStoreI, err lib.ErrorI) {
	store, ok := s.store.(lib.StoreI)
	if !ok {
		return nil, nil, ErrWrongStoreType()
	}
	txn = store.NewTxn()
	s.SetStore(txn)
	return txn, store, nil
}

// Commit() persists every pending write of the current height
func (s *StateMachine) Commit() lib.ErrorI {
	store, ok := s.store.(lib.StoreI)
	if !ok {
		return ErrWrongStoreType()
	}
	return store.Commit(s.height)
}

// Discard() drops every write since the last commit
func (s *StateMachine) Discard() {
	if store, ok := s.store.(lib.StoreI); ok {
		store.Discard()
	}
}
