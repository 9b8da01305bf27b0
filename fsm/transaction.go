package fsm

import (
	"runtime/debug"
	"time"

	"github.com/canopy-network/ballot/lib"
)

// ApplyTransaction() executes a transaction at the current height and returns its TxResult
// a rejected transaction leaves the store untouched and carries the reason in TxResult.Error;
// the returned error is reserved for failures of the node itself (storage, panics)
func (s *StateMachine) ApplyTransaction(tx *lib.Transaction) (result *lib.TxResult, err lib.ErrorI) {
	// catch incase there's a panic
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("%v\n%s", r, string(debug.Stack()))
			result, err = nil, lib.ErrPanic()
		}
	}()
	start := time.Now()
	defer func() { s.Metrics.ObserveApply(time.Since(start).Seconds()) }()
	result = &lib.TxResult{Height: s.Height()}
	if tx != nil {
		result.Type, result.Caller = tx.Type, tx.Caller
	}
	if result.TxHash, err = tx.Hash(); err != nil {
		return nil, err
	}
	// validate the transaction before it reaches the contract
	msg, e := s.CheckTx(tx)
	if e != nil {
		return s.reject(result, e), nil
	}
	// open the transactional boundary
	txn, parent, err := s.TxnWrap()
	if err != nil {
		return nil, err
	}
	defer s.SetStore(parent)
	s.events.Refer(result.TxHash)
	tracked := len(s.events.Events)
	rollback := func() {
		txn.Discard()
		s.events.Events = s.events.Events[:tracked]
	}
	if result.Event, e = s.HandleMessage(tx.Caller, msg); e != nil {
		rollback()
		if e.Module() == lib.StorageModule {
			return nil, e
		}
		return s.reject(result, e), nil
	}
	if err = txn.Write(); err != nil {
		rollback()
		return nil, err
	}
	switch x := msg.(type) {
	case *lib.MessageInitializeVoting:
		s.Metrics.AddRound()
	case *lib.MessageVote:
		s.Metrics.AddVote(x.Choice)
	}
	s.log.Debugf("Applied %s from %s at height %d", tx.Type, tx.Caller, s.Height())
	return result, nil
}

// reject() sets the error of a result and records it
func (s *StateMachine) reject(result *lib.TxResult, err lib.ErrorI) *lib.TxResult {
	s.log.Debugf("Rejected %s from %s at height %d with code %d", result.Type, result.Caller, s.Height(), err.Code())
	s.Metrics.AddRejected(result.Type, err)
	result.Error = lib.AsError(err)
	return result
}

// CheckTx() performs stateless validation of the envelope and decodes its message
func (s *StateMachine) CheckTx(tx *lib.Transaction) (msg any, err lib.ErrorI) {
	if err = tx.Check(); err != nil {
		return nil, err
	}
	switch tx.Type {
	case lib.MessageTypeInitializeVoting:
		msg = new(lib.MessageInitializeVoting)
	case lib.MessageTypeVote:
		msg = new(lib.MessageVote)
	case lib.MessageTypeCloseVotingEarly:
		msg = new(lib.MessageCloseVotingEarly)
	}
	if len(tx.Msg) != 0 {
		if err = lib.UnmarshalJSON(tx.Msg, msg); err != nil {
			return nil, err
		}
	}
	if vote, ok := msg.(*lib.MessageVote); ok {
		if err = vote.Choice.Check(); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// HandleMessage() routes the message to the contract operation and indexes the emitted event
func (s *StateMachine) HandleMessage(caller lib.Principal, msg any) (*lib.Event, lib.ErrorI) {
	switch x := msg.(type) {
	case *lib.MessageInitializeVoting:
		e, err := s.InitializeVoting(caller, x.Duration)
		if err != nil {
			return nil, err
		}
		return s.addEvent(e.Event, e)
	case *lib.MessageVote:
		e, err := s.CastVote(caller, x.Choice)
		if err != nil {
			return nil, err
		}
		return s.addEvent(e.Event, e)
	case *lib.MessageCloseVotingEarly:
		e, err := s.CloseVotingEarly(caller)
		if err != nil {
			return nil, err
		}
		return s.addEvent(e.Event, e)
	default:
		return nil, lib.ErrInvalidArgument()
	}
}
