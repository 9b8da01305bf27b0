package store

import (
	"bytes"
	"sort"
	"strings"

	"github.com/canopy-network/ballot/lib"
)

// enforce the StoreTxnI interface
var _ lib.StoreTxnI = &Txn{}

/*
	Txn is a write overlay on top of a parent store.
	Set and Delete are buffered in memory and Write() replays them onto the parent in key order,
	while Discard() forgets them. Reads merge the buffer with the parent as if Write() had already
	happened.

	The contract applies each transaction inside a Txn so a failed operation leaves no trace in the
	store. Badger has no nested transactions, which is why this layer exists.

	CONTRACT:
	- not thread safe
	- Write() is only atomic if the parent is a pending badger transaction that is discarded when Write() fails
	- a deleted key reads as nil
*/

type Txn struct {
	parent lib.RWStoreI // store to Write() to
	buffer
}

// buffer keeps the pending operations and their keys in lexicographical order
type buffer struct {
	ops  map[string]op // [string(key)] -> set/del operation
	keys []string      // ops keys sorted lexicographically; needed for iteration
}

// op is a single pending operation
type op struct {
	value  []byte // value of key value pair
	delete bool   // is operation delete
}

// NewTxn() creates a new instance of a Txn with the specified parent store
func NewTxn(parent lib.RWStoreI) *Txn {
	return &Txn{parent: parent, buffer: newBuffer()}
}

func newBuffer() buffer { return buffer{ops: make(map[string]op)} }

// Get() retrieves the value for a key from the buffer, falling back to the parent store
func (t *Txn) Get(key []byte) ([]byte, lib.ErrorI) {
	if v, found := t.ops[string(key)]; found {
		return v.value, nil
	}
	return t.parent.Get(key)
}

// Set() buffers a write of value under key
func (t *Txn) Set(key, value []byte) lib.ErrorI {
	t.put(string(key), op{value: bytes.Clone(value)})
	return nil
}

// Delete() buffers the removal of key
func (t *Txn) Delete(key []byte) lib.ErrorI {
	t.put(string(key), op{delete: true})
	return nil
}

// put() records the operation and keeps keys sorted
func (b *buffer) put(key string, o op) {
	if _, found := b.ops[key]; !found {
		i := sort.SearchStrings(b.keys, key)
		b.keys = append(b.keys, "")
		copy(b.keys[i+1:], b.keys[i:])
		b.keys[i] = key
	}
	b.ops[key] = o
}

// Iterator() returns a merged iterator of the buffer and the parent over the prefix
func (t *Txn) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := t.parent.Iterator(prefix)
	if err != nil {
		return nil, err
	}
	return newTxnIterator(parent, t.buffer, prefix, false), nil
}

// RevIterator() returns a reverse merged iterator of the buffer and the parent over the prefix
func (t *Txn) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := t.parent.RevIterator(prefix)
	if err != nil {
		return nil, err
	}
	return newTxnIterator(parent, t.buffer, prefix, true), nil
}

// Discard() drops every buffered operation
func (t *Txn) Discard() { t.buffer = newBuffer() }

// Write() replays the buffered operations onto the parent in key order and clears the buffer
func (t *Txn) Write() lib.ErrorI {
	for _, k := range t.keys {
		o := t.ops[k]
		if o.delete {
			if err := t.parent.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := t.parent.Set([]byte(k), o.value); err != nil {
			return err
		}
	}
	t.buffer = newBuffer()
	return nil
}

// enforce the Iterator interface
var _ lib.IteratorI = &TxnIterator{}

// TxnIterator walks the buffer and the parent iterator in step, the buffer shadowing the parent on equal keys
type TxnIterator struct {
	parent  lib.IteratorI
	buffer
	prefix  string
	index   int // position in buffer.keys
	reverse bool
	useBuf  bool // the current item comes from the buffer
}

// newTxnIterator() positions a merged iterator at its first entry
func newTxnIterator(parent lib.IteratorI, b buffer, prefix []byte, reverse bool) *TxnIterator {
	it := &TxnIterator{parent: parent, buffer: b, prefix: string(prefix), reverse: reverse}
	if reverse {
		if end := prefixEnd(prefix); end != nil {
			it.index = sort.SearchStrings(it.keys, string(end)) - 1
		} else {
			it.index = len(it.keys) - 1
		}
	} else {
		it.index = sort.SearchStrings(it.keys, it.prefix)
	}
	return it
}

// Close() closes the parent iterator
func (c *TxnIterator) Close() { c.parent.Close() }

// Valid() settles on the next live entry of either side and reports if one exists
func (c *TxnIterator) Valid() bool {
	for {
		switch {
		case !c.bufValid() && !c.parent.Valid():
			return false
		case !c.bufValid():
			c.useBuf = false
			return true
		case !c.parent.Valid():
			if c.bufOp().delete {
				c.bufNext()
				continue
			}
			c.useBuf = true
			return true
		}
		switch c.compare(c.bufKey(), c.parent.Key()) {
		case 1: // parent first
			c.useBuf = false
			return true
		case 0: // buffer shadows parent
			if c.bufOp().delete {
				c.parent.Next()
				c.bufNext()
				continue
			}
			c.useBuf = true
			return true
		default: // buffer first
			if c.bufOp().delete {
				c.bufNext()
				continue
			}
			c.useBuf = true
			return true
		}
	}
}

// Next() advances past the current entry
func (c *TxnIterator) Next() {
	switch {
	case !c.parent.Valid():
		c.bufNext()
	case !c.bufValid():
		c.parent.Next()
	default:
		switch c.compare(c.bufKey(), c.parent.Key()) {
		case 1:
			c.parent.Next()
		case 0:
			c.parent.Next()
			c.bufNext()
		default:
			c.bufNext()
		}
	}
}

// Key() returns the current key
func (c *TxnIterator) Key() []byte {
	if c.useBuf {
		return c.bufKey()
	}
	return c.parent.Key()
}

// Value() returns the current value
func (c *TxnIterator) Value() []byte {
	if c.useBuf {
		return c.bufOp().value
	}
	return c.parent.Value()
}

// bufValid() reports if the buffer cursor is in range and within the prefix
func (c *TxnIterator) bufValid() bool {
	if c.index < 0 || c.index >= len(c.keys) {
		return false
	}
	return strings.HasPrefix(c.keys[c.index], c.prefix)
}

func (c *TxnIterator) bufKey() []byte { return []byte(c.keys[c.index]) }
func (c *TxnIterator) bufOp() op      { return c.ops[c.keys[c.index]] }

func (c *TxnIterator) bufNext() {
	if c.reverse {
		c.index--
	} else {
		c.index++
	}
}

// compare() orders two keys in the direction of iteration
func (c *TxnIterator) compare(a, b []byte) int {
	if c.reverse {
		return -bytes.Compare(a, b)
	}
	return bytes.Compare(a, b)
}
