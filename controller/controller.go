package controller

import (
	"context"
	"sync"
	"time"

	"github.com/canopy-network/ballot/fsm"
	"github.com/canopy-network/ballot/lib"
)

// Controller is the local ledger host of the contract
// it serializes every transaction and query, supplies the block height and commits each block
type Controller struct {
	FSM     *fsm.StateMachine
	Config  lib.Config
	Metrics *lib.Metrics
	log     lib.LoggerI
	sync.Mutex
}

// New() creates a new instance of a Controller that builds on the block after the last committed one
func New(sm *fsm.StateMachine, c lib.Config, metrics *lib.Metrics, l lib.LoggerI) (*Controller, lib.ErrorI) {
	if err := sm.SetHeight(sm.Height() + 1); err != nil {
		return nil, err
	}
	controller := &Controller{
		FSM:     sm,
		Config:  c,
		Metrics: metrics,
		log:     l,
	}
	controller.updateTally()
	return controller, nil
}

// Run() advances the block height every BlockTimeMS until the context is cancelled
// with a zero block time, heights only move through AdvanceHeight()
func (c *Controller) Run(ctx context.Context) error {
	if c.Config.BlockTimeMS <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(time.Duration(c.Config.BlockTimeMS) * time.Millisecond)
	defer ticker.Stop()
	c.log.Infof("Block clock started with a %dms block time", c.Config.BlockTimeMS)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.AdvanceHeight(); err != nil {
				c.log.Errorf("Advancing the height failed with err: %s", err.Error())
			}
		}
	}
}

// Stop() commits the pending block and closes the store
func (c *Controller) Stop() {
	c.Lock()
	defer c.Unlock()
	if err := c.commit(); err != nil {
		c.log.Error(err.Error())
	}
	store, ok := c.FSM.Store().(lib.StoreI)
	if !ok {
		c.log.Error(fsm.ErrWrongStoreType().Error())
		return
	}
	if err := store.Close(); err != nil {
		c.log.Error(err.Error())
	}
}

// SubmitTx() applies a transaction in the current block
// an accepted transaction is persisted before it is acknowledged, so later failures of the block can't undo it
func (c *Controller) SubmitTx(tx *lib.Transaction) (*lib.TxResult, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	result, err := c.FSM.ApplyTransaction(tx)
	if err != nil {
		c.log.Errorf("Applying transaction failed with err: %s", err.Error())
		c.rollback()
		return nil, err
	}
	if !result.Success() {
		return result, nil
	}
	if err = c.persist(); err != nil {
		c.log.Errorf("Persisting %s from %s failed with err: %s", result.Type, result.Caller, err.Error())
		c.rollback()
		return nil, err
	}
	c.log.Infof("Applied %s from %s at height %d", result.Type, result.Caller, result.Height)
	c.updateTally()
	return result, nil
}

// AdvanceHeight() commits the current block and moves to the next one
func (c *Controller) AdvanceHeight() (uint64, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.advanceTo(c.FSM.Height() + 1)
}

// AdvanceTo() commits the current block and jumps to a later height
func (c *Controller) AdvanceTo(height uint64) (uint64, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	if height <= c.FSM.Height() {
		return 0, fsm.ErrHeightNotIncreasing(c.FSM.Height(), height)
	}
	return c.advanceTo(height)
}

// advanceTo() is the unlocked implementation of AdvanceTo()
func (c *Controller) advanceTo(height uint64) (uint64, lib.ErrorI) {
	if err := c.commit(); err != nil {
		return 0, err
	}
	if err := c.FSM.SetHeight(height); err != nil {
		return 0, err
	}
	c.updateTally()
	return height, nil
}

// commit() verifies the ledger and closes the current block
// a ledger that fails verification halts the block: pending writes are dropped and the height stays put
func (c *Controller) commit() lib.ErrorI {
	if err := c.FSM.CheckInvariants(); err != nil {
		c.log.Errorf("Height %d failed verification with err: %s", c.FSM.Height(), err.Error())
		c.rollback()
		return err
	}
	return c.persist()
}

// persist() writes the pending state at the current height and clears the tracked events
func (c *Controller) persist() lib.ErrorI {
	if err := c.FSM.Commit(); err != nil {
		return err
	}
	if events := c.FSM.Events().Reset(); len(events) != 0 {
		c.log.Debugf("Committed %d events at height %d", len(events), c.FSM.Height())
	}
	return nil
}

// rollback() drops every write since the last commit along with the events they emitted
func (c *Controller) rollback() {
	c.FSM.Discard()
	if events := c.FSM.Events().Reset(); len(events) != 0 {
		c.log.Warnf("Dropped %d uncommitted events at height %d", len(events), c.FSM.Height())
	}
}

// updateTally() refreshes the tally telemetry
func (c *Controller) updateTally() {
	results, err := c.FSM.GetResults()
	if err != nil {
		c.log.Warnf("Loading the results for telemetry failed with err: %s", err.Error())
		return
	}
	c.Metrics.UpdateTally(results)
}

// QUERIES BELOW

// Height() returns the height of the block being built
func (c *Controller) Height() uint64 {
	c.Lock()
	defer c.Unlock()
	return c.FSM.Height()
}

// GetResults() returns the tallies of the round
func (c *Controller) GetResults() (*lib.Results, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetResults()
}

// GetVotingStatus() returns the state of the voting window
func (c *Controller) GetVotingStatus() (*lib.VotingStatus, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetVotingStatus()
}

// GetWinner() returns the leading choice
func (c *Controller) GetWinner() (*lib.WinnerResult, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetWinner()
}

// GetTurnout() returns the share of the electorate that voted
func (c *Controller) GetTurnout(eligible uint64) (*lib.TurnoutResult, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetTurnout(eligible)
}

// GetVoter() returns the vote of a principal; nil if they haven't voted
func (c *Controller) GetVoter(principal lib.Principal) (*lib.Voter, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetVoter(principal)
}

// GetVoters() lists the voters of the round
func (c *Controller) GetVoters() ([]*lib.Voter, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetVoters()
}

// GetEventsByHeight() returns the event log of a height
func (c *Controller) GetEventsByHeight(height uint64) (lib.Events, lib.ErrorI) {
	c.Lock()
	defer c.Unlock()
	return c.FSM.GetEventsByHeight(height)
}
