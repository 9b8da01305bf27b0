package lib

/* This file contains persistence module interfaces that are used throughout the app */

// StoreI defines the interface for the committed contract storage
type StoreI interface {
	RWStoreI                     // reading and writing
	NewTxn() StoreTxnI           // wrap the store in a discardable nested store
	Version() uint64             // access the height the store was last committed at
	Commit(height uint64) ErrorI // persist the pending writes and record the height
	Discard()                    // drop the pending writes since the last commit
	Close() ErrorI               // gracefully stop the database
}

// StoreTxnI is a write overlay that is either flushed to its parent or thrown away
type StoreTxnI interface {
	RWStoreI
	Write() ErrorI // flush the buffered operations to the parent
	Discard()      // drop the buffered operations
}

// RWStoreI defines the Read/Write interface for basic db CRUD operations
type RWStoreI interface {
	RStoreI
	WStoreI
}

// WStoreI defines an interface for basic write operations
type WStoreI interface {
	Set(key, value []byte) ErrorI // set value bytes referenced by key bytes
	Delete(key []byte) ErrorI     // delete the value referenced by key bytes
}

// RStoreI defines an interface for basic read operations
type RStoreI interface {
	Get(key []byte) ([]byte, ErrorI)               // get value bytes referenced by key bytes; (nil, nil) if absent
	Iterator(prefix []byte) (IteratorI, ErrorI)    // lexicographical iteration over a prefix
	RevIterator(prefix []byte) (IteratorI, ErrorI) // reverse lexicographical iteration over a prefix
}

// IteratorI defines an interface for iterating over key-value pairs in a data store
type IteratorI interface {
	Valid() bool   // if the item the iterator is pointing at is valid
	Next()         // move to the next item
	Key() []byte   // retrieve key
	Value() []byte // retrieve value
	Close()        // close the iterator when done, ensuring proper resource management
}
