package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxnWriteSetGet(t *testing.T) {
	parent, cleanup := testStore(t)
	defer cleanup()
	test := NewTxn(parent)
	require.NoError(t, test.Set([]byte("1/a"), []byte("a")))
	// get from ops before write()
	val, err := test.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), val)
	// parent is untouched before write()
	val, err = parent.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Nil(t, val)
	require.NoError(t, test.Write())
	// parent has the value after write()
	val, err = parent.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), val)
	val, err = test.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), val)
}

func TestTxnWriteDelete(t *testing.T) {
	parent, cleanup := testStore(t)
	defer cleanup()
	test := NewTxn(parent)
	require.NoError(t, test.Set([]byte("1/a"), []byte("a")))
	require.NoError(t, test.Write())
	require.NoError(t, test.Delete([]byte("1/a")))
	val, err := test.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Nil(t, val)
	val, err = parent.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), val)
	require.NoError(t, test.Write())
	val, err = parent.Get([]byte("1/a"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestTxnDiscard(t *testing.T) {
	parent, cleanup := testStore(t)
	defer cleanup()
	test := NewTxn(parent)
	require.NoError(t, test.Set([]byte("a"), []byte("a")))
	test.Discard()
	val, err := test.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, val)
	// a discarded txn is reusable
	require.NoError(t, test.Set([]byte("b"), []byte("b")))
	require.NoError(t, test.Write())
	val, err = parent.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), val)
	val, err = parent.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestTxnSetCopiesValue(t *testing.T) {
	parent, cleanup := testStore(t)
	defer cleanup()
	test := NewTxn(parent)
	value := []byte("a")
	require.NoError(t, test.Set([]byte("k"), value))
	value[0] = 'b'
	got, err := test.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), got)
}

func TestTxnIterateNilPrefix(t *testing.T) {
	parent, cleanup := testStore(t)
	defer cleanup()
	test := NewTxn(parent)
	bulkSetKV(t, test, "", "c", "a", "b")
	it1, err := test.Iterator(nil)
	require.NoError(t, err)
	validateIterators(t, []string{"a", "b", "c"}, it1)
	it1.Close()
	it2, err := test.RevIterator(nil)
	require.NoError(t, err)
	validateIterators(t, []string{"c", "b", "a"}, it2)
	it2.Close()
}

func TestTxnIterateMerged(t *testing.T) {
	tests := []struct {
		name        string
		detail      string
		parent      []string
		txn         []string
		deleted     []string
		prefix      string
		expected    []string
		expectedRev []string
	}{
		{
			name:        "txn only",
			detail:      "nothing in the parent",
			txn:         []string{"1/c", "1/a", "1/b"},
			prefix:      "1/",
			expected:    []string{"1/a", "1/b", "1/c"},
			expectedRev: []string{"1/c", "1/b", "1/a"},
		},
		{
			name:        "parent only",
			detail:      "nothing buffered",
			parent:      []string{"1/b", "1/a", "2/a"},
			prefix:      "1/",
			expected:    []string{"1/a", "1/b"},
			expectedRev: []string{"1/b", "1/a"},
		},
		{
			name:        "interleaved",
			detail:      "buffer and parent keys alternate",
			parent:      []string{"1/a", "1/c", "1/e"},
			txn:         []string{"1/b", "1/d", "1/f", "0/z", "2/a"},
			prefix:      "1/",
			expected:    []string{"1/a", "1/b", "1/c", "1/d", "1/e", "1/f"},
			expectedRev: []string{"1/f", "1/e", "1/d", "1/c", "1/b", "1/a"},
		},
		{
			name:        "shadowed",
			detail:      "the buffer overwrites a parent key",
			parent:      []string{"1/a", "1/b"},
			txn:         []string{"1/b"},
			prefix:      "1/",
			expected:    []string{"1/a", "1/b"},
			expectedRev: []string{"1/b", "1/a"},
		},
		{
			name:        "deleted",
			detail:      "buffered deletes hide parent keys and buffered sets",
			parent:      []string{"1/a", "1/b", "1/c"},
			txn:         []string{"1/d"},
			deleted:     []string{"1/b", "1/d", "1/x"},
			prefix:      "1/",
			expected:    []string{"1/a", "1/c"},
			expectedRev: []string{"1/c", "1/a"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parent, cleanup := testStore(t)
			defer cleanup()
			bulkSetKV(t, parent, "", test.parent...)
			txn := NewTxn(parent)
			bulkSetKV(t, txn, "", test.txn...)
			for _, d := range test.deleted {
				require.NoError(t, txn.Delete([]byte(d)))
			}
			it, err := txn.Iterator([]byte(test.prefix))
			require.NoError(t, err)
			validateIterators(t, test.expected, it)
			it.Close()
			rIt, err := txn.RevIterator([]byte(test.prefix))
			require.NoError(t, err)
			validateIterators(t, test.expectedRev, rIt)
			rIt.Close()
			// after writing, the parent alone yields the same view
			require.NoError(t, txn.Write())
			pIt, err := parent.Iterator([]byte(test.prefix))
			require.NoError(t, err)
			validateIterators(t, test.expected, pIt)
			pIt.Close()
		})
	}
}
