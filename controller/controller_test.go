package controller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/units"
	"github.com/canopy-network/ballot/fsm"
	"github.com/canopy-network/ballot/lib"
	"github.com/canopy-network/ballot/store"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin  = lib.Principal("admin")
	testVoter1 = lib.Principal("voter1")
	testVoter2 = lib.Principal("voter2")
)

func TestNewStartsAtNextHeight(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	// genesis is committed at height 0
	require.EqualValues(t, 1, c.Height())
}

func TestSubmitTx(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	result := submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 10})
	require.True(t, result.Success())
	require.EqualValues(t, 1, result.Height)
	result = submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceB})
	require.True(t, result.Success())
	result = submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceA})
	require.False(t, result.Success())
	require.Equal(t, lib.CodeAlreadyVoted, result.Error.Code())
	results, err := c.GetResults()
	require.NoError(t, err)
	require.Equal(t, &lib.Results{B: 1, Total: 1, Start: 1, End: 11, IsActive: true}, results)
	voter, err := c.GetVoter(testVoter1)
	require.NoError(t, err)
	require.Equal(t, lib.ChoiceB, voter.Choice)
	voter, err = c.GetVoter(testVoter2)
	require.NoError(t, err)
	require.Nil(t, voter)
}

func TestAdvanceHeight(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	require.True(t, submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 2}).Success())
	height, err := c.AdvanceHeight()
	require.NoError(t, err)
	require.EqualValues(t, 2, height)
	// the events of height 1 were committed and remain queryable
	events, err := c.GetEventsByHeight(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Empty(t, c.FSM.Events().Events)
	require.True(t, submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceA}).Success())
	// jump past the end of the round
	_, err = c.AdvanceTo(2)
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeHeightNotIncreasing), err)
	height, err = c.AdvanceTo(3)
	require.NoError(t, err)
	require.EqualValues(t, 3, height)
	result := submit(t, c, lib.MessageTypeVote, testVoter2, &lib.MessageVote{Choice: lib.ChoiceA})
	require.Equal(t, lib.CodeVotingEnded, result.Error.Code())
	winner, err := c.GetWinner()
	require.NoError(t, err)
	require.Equal(t, &lib.WinnerResult{Winner: lib.WinnerA, Differential: 1, VotesA: 1, IsFinal: true}, winner)
	status, err := c.GetVotingStatus()
	require.NoError(t, err)
	require.True(t, status.HasEnded)
	voters, err := c.GetVoters()
	require.NoError(t, err)
	require.Len(t, voters, 1)
	turnout, err := c.GetTurnout(4)
	require.NoError(t, err)
	require.EqualValues(t, 25, turnout.Turnout)
}

func TestSubmitTxPersistsAccepted(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	require.True(t, submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 10}).Success())
	require.True(t, submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceA}).Success())
	require.Empty(t, c.FSM.Events().Events)
	// dropping the pending writes leaves the acknowledged vote in place
	c.FSM.Discard()
	results, err := c.GetResults()
	require.NoError(t, err)
	require.EqualValues(t, 1, results.A)
	voter, err := c.GetVoter(testVoter1)
	require.NoError(t, err)
	require.Equal(t, lib.ChoiceA, voter.Choice)
}

func TestSubmitTxManyVotesInOneBlock(t *testing.T) {
	// a small memtable bounds a single badger transaction at roughly 1.2 MB
	config := lib.StoreConfig{
		DataDirPath:      t.TempDir(),
		DBName:           "test",
		MemTableSize:     int64(8 * units.MiB),
		ValueLogFileSize: int64(16 * units.MiB),
	}
	c, cleanup := newTestController(t, config)
	defer cleanup()
	const count = 3000
	require.True(t, submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 10}).Success())
	for i := 0; i < count; i++ {
		voter := lib.Principal(fmt.Sprintf("voter%04d", i))
		require.True(t, submit(t, c, lib.MessageTypeVote, voter, &lib.MessageVote{Choice: lib.ChoiceA}).Success(), voter)
	}
	height, err := c.AdvanceHeight()
	require.NoError(t, err)
	require.EqualValues(t, 2, height)
	results, err := c.GetResults()
	require.NoError(t, err)
	require.EqualValues(t, count, results.A)
	require.EqualValues(t, count, results.Total)
	events, err := c.GetEventsByHeight(1)
	require.NoError(t, err)
	require.Len(t, events, count+1)
}

func TestAdvanceHeightFailedVerification(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	require.True(t, submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 10}).Success())
	require.True(t, submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceA}).Success())
	// corrupt the pending state behind the contract's back
	ledger, err := c.FSM.GetLedger()
	require.NoError(t, err)
	ledger.VotesA += 5
	require.NoError(t, c.FSM.SetLedger(ledger))
	require.NoError(t, c.FSM.Events().Add(&lib.Event{EventType: lib.EventTypeVoteCast, Height: 1}))
	_, err = c.AdvanceHeight()
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeInvariantViolation), err)
	// the height is held, the tracker is cleared and only the unacknowledged write is gone
	require.EqualValues(t, 1, c.Height())
	require.Empty(t, c.FSM.Events().Events)
	results, err := c.GetResults()
	require.NoError(t, err)
	require.Equal(t, &lib.Results{A: 1, Total: 1, Start: 1, End: 11, IsActive: true}, results)
	height, err := c.AdvanceHeight()
	require.NoError(t, err)
	require.EqualValues(t, 2, height)
}

func TestStopPersists(t *testing.T) {
	config := lib.StoreConfig{
		DataDirPath:      t.TempDir(),
		DBName:           "test",
		MemTableSize:     int64(16 * units.MiB),
		ValueLogFileSize: int64(16 * units.MiB),
	}
	c, _ := newTestController(t, config)
	require.True(t, submit(t, c, lib.MessageTypeInitializeVoting, testAdmin, &lib.MessageInitializeVoting{Duration: 10}).Success())
	require.True(t, submit(t, c, lib.MessageTypeVote, testVoter1, &lib.MessageVote{Choice: lib.ChoiceA}).Success())
	// the pending block is committed on stop
	c.Stop()
	c, cleanup := newTestController(t, config)
	defer cleanup()
	require.EqualValues(t, 2, c.Height())
	results, err := c.GetResults()
	require.NoError(t, err)
	require.EqualValues(t, 1, results.A)
}

func TestRunBlockClock(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	c.Config.BlockTimeMS = 5
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Run(ctx) }()
	require.Eventually(t, func() bool { return c.Height() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunWithoutBlockClock(t *testing.T) {
	c, cleanup := newTestController(t, lib.StoreConfig{})
	defer cleanup()
	c.Config.BlockTimeMS = 0
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx))
	require.EqualValues(t, 1, c.Height())
}

// newTestController() creates a controller over a deployed contract; an empty store config uses memory
func newTestController(t *testing.T, storeConfig lib.StoreConfig) (*Controller, func()) {
	log := lib.NewNullLogger()
	var (
		db  lib.StoreI
		err lib.ErrorI
	)
	if storeConfig.DataDirPath == "" {
		storeConfig.DataDirPath = t.TempDir()
		db, err = store.NewStoreInMemory(log)
	} else {
		db, err = store.NewStore(storeConfig, log)
	}
	require.NoError(t, err)
	require.NoError(t, fsm.WriteGenesisFile(storeConfig.DataDirPath, &fsm.GenesisState{Administrator: testAdmin}))
	config := lib.Config{StoreConfig: storeConfig}
	metrics := lib.NewMetricsServer(config.MetricsConfig, log)
	sm, err := fsm.New(config, db, metrics, log)
	require.NoError(t, err)
	c, err := New(sm, config, metrics, log)
	require.NoError(t, err)
	return c, c.Stop
}

func submit(t *testing.T, c *Controller, msgType lib.MessageType, caller lib.Principal, msg any) *lib.TxResult {
	tx, err := lib.NewTransaction(msgType, caller, msg)
	require.NoError(t, err)
	result, err := c.SubmitTx(tx)
	require.NoError(t, err)
	return result
}
