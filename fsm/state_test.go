package fsm

import (
	"testing"

	"github.com/alecthomas/units"
	"github.com/canopy-network/ballot/lib"
	"github.com/canopy-network/ballot/store"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin  = lib.Principal("admin")
	testVoter1 = lib.Principal("voter1")
	testVoter2 = lib.Principal("voter2")
	testVoter3 = lib.Principal("voter3")
)

func TestSetHeight(t *testing.T) {
	sm := newTestStateMachine(t)
	require.NoError(t, sm.SetHeight(5))
	require.EqualValues(t, 5, sm.Height())
	// same height is allowed
	require.NoError(t, sm.SetHeight(5))
	err := sm.SetHeight(4)
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeHeightNotIncreasing), err)
	require.EqualValues(t, 5, sm.Height())
}

func TestTxnWrap(t *testing.T) {
	sm := newTestStateMachine(t)
	txn, parent, err := sm.TxnWrap()
	require.NoError(t, err)
	require.Equal(t, txn, sm.Store())
	require.NoError(t, sm.Set([]byte("a"), []byte("a")))
	// not visible in the parent until written
	got, err := parent.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, got)
	require.NoError(t, txn.Write())
	sm.SetStore(parent)
	got, err = sm.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), got)
	_, _, err = sm.TxnWrap()
	require.NoError(t, err)
	// a txn can't be wrapped again
	_, _, err = sm.TxnWrap()
	require.ErrorContains(t, err, "wrong store type")
}

func TestDeleteAll(t *testing.T) {
	sm := newTestStateMachine(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, sm.Set(lib.JoinLenPrefix([]byte("p"), []byte(k)), []byte(k)))
	}
	require.NoError(t, sm.Set([]byte("other"), []byte("other")))
	require.NoError(t, sm.DeleteAll(lib.JoinLenPrefix([]byte("p"))))
	count := 0
	require.NoError(t, sm.IterateAndExecute(lib.JoinLenPrefix([]byte("p")), func(_, _ []byte) lib.ErrorI {
		count++
		return nil
	}))
	require.Zero(t, count)
	got, err := sm.Get([]byte("other"))
	require.NoError(t, err)
	require.Equal(t, []byte("other"), got)
}

func TestCommitAndDiscard(t *testing.T) {
	sm := newTestStateMachine(t)
	require.NoError(t, sm.Commit())
	_, err := sm.InitializeVoting(testAdmin, 10)
	require.NoError(t, err)
	sm.Discard()
	results, err := sm.GetResults()
	require.NoError(t, err)
	require.Equal(t, &lib.Results{}, results)
	// deployment survived the discard
	ledger, err := sm.GetLedger()
	require.NoError(t, err)
	require.Equal(t, testAdmin, ledger.Administrator)
}

func newTestStateMachine(t *testing.T) *StateMachine {
	log := lib.NewNullLogger()
	db, err := store.NewStoreInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sm := &StateMachine{
		store:  db,
		height: 1,
		events: new(lib.EventsTracker),
		Config: lib.Config{
			MainConfig: lib.DefaultMainConfig(),
		},
		log: log,
	}
	require.NoError(t, sm.Deploy(testAdmin))
	return sm
}

func newTestStoreConfig(t *testing.T) lib.StoreConfig {
	return lib.StoreConfig{
		DataDirPath:      t.TempDir(),
		DBName:           "test",
		MemTableSize:     int64(16 * units.MiB),
		ValueLogFileSize: int64(16 * units.MiB),
	}
}

// newTestRound() deploys and initializes a round at `start` lasting `duration` blocks
func newTestRound(t *testing.T, start, duration uint64) *StateMachine {
	sm := newTestStateMachine(t)
	require.NoError(t, sm.SetHeight(start))
	_, err := sm.InitializeVoting(testAdmin, duration)
	require.NoError(t, err)
	return sm
}
