package fsm

import (
	"math"

	"github.com/canopy-network/ballot/lib"
)

/* This file implements the operations of the voting contract */

// InitializeVoting() starts a round of `duration` blocks at the current height
// any previous round is discarded, including one that is still active
func (s *StateMachine) InitializeVoting(caller lib.Principal, duration uint64) (*lib.EventVotingInitialized, lib.ErrorI) {
	ledger, err := s.getDeployedLedger()
	if err != nil {
		return nil, err
	}
	if !ledger.IsAdministrator(caller) {
		return nil, ErrNotAuthorized(caller)
	}
	if duration == 0 || duration > math.MaxUint64-s.height {
		return nil, ErrInvalidDuration()
	}
	if err = s.ClearVoters(); err != nil {
		return nil, err
	}
	ledger.StartBlock, ledger.EndBlock = s.height, s.height+duration
	ledger.VotesA, ledger.VotesB = 0, 0
	ledger.Initialized, ledger.ClosedEarly = true, false
	ledger.Round++
	if err = s.SetLedger(ledger); err != nil {
		return nil, err
	}
	return &lib.EventVotingInitialized{
		Event:         lib.EventTypeVotingInitialized,
		StartBlock:    ledger.StartBlock,
		EndBlock:      ledger.EndBlock,
		Duration:      duration,
		InitializedBy: caller,
		Timestamp:     s.height,
	}, nil
}

// CastVote() records the caller's vote and increments the chosen tally
func (s *StateMachine) CastVote(caller lib.Principal, choice lib.Choice) (*lib.EventVoteCast, lib.ErrorI) {
	if err := choice.Check(); err != nil {
		return nil, err
	}
	ledger, err := s.getDeployedLedger()
	if err != nil {
		return nil, err
	}
	window := ledger.Window()
	if !window.HasStarted(s.height) {
		return nil, ErrVotingNotStarted()
	}
	if window.HasEnded(s.height) {
		return nil, ErrVotingEnded()
	}
	voted, err := s.HasVoted(caller)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted(caller)
	}
	if err = s.SetVoter(&lib.Voter{Principal: caller, Choice: choice, Height: s.height}); err != nil {
		return nil, err
	}
	prevA, prevB := ledger.VotesA, ledger.VotesB
	if choice == lib.ChoiceA {
		ledger.VotesA++
	} else {
		ledger.VotesB++
	}
	if err = s.SetLedger(ledger); err != nil {
		return nil, err
	}
	return &lib.EventVoteCast{
		Event:          lib.EventTypeVoteCast,
		Voter:          caller,
		Choice:         choice,
		PreviousVotesA: prevA,
		NewVotesA:      ledger.VotesA,
		PreviousVotesB: prevB,
		NewVotesB:      ledger.VotesB,
		TotalVotes:     ledger.Total(),
		BlockHeight:    s.height,
	}, nil
}

// CloseVotingEarly() ends the active round at the current height
// a round that already ended (or never started) cannot be closed again
func (s *StateMachine) CloseVotingEarly(caller lib.Principal) (*lib.EventVotingClosedEarly, lib.ErrorI) {
	ledger, err := s.getDeployedLedger()
	if err != nil {
		return nil, err
	}
	if !ledger.IsAdministrator(caller) {
		return nil, ErrNotAuthorized(caller)
	}
	window := ledger.Window()
	if !ledger.Initialized || window.HasEnded(s.height) {
		return nil, ErrVotingEnded()
	}
	if !window.HasStarted(s.height) {
		return nil, ErrVotingNotStarted()
	}
	originalEnd := ledger.EndBlock
	ledger.EndBlock, ledger.ClosedEarly = s.height, true
	if err = s.SetLedger(ledger); err != nil {
		return nil, err
	}
	return &lib.EventVotingClosedEarly{
		Event:            lib.EventTypeVotingClosedEarly,
		ClosedBy:         caller,
		OriginalEndBlock: originalEnd,
		NewEndBlock:      ledger.EndBlock,
		FinalVotesA:      ledger.VotesA,
		FinalVotesB:      ledger.VotesB,
		TotalVotes:       ledger.Total(),
		Timestamp:        s.height,
	}, nil
}

// GetResults() returns the tallies and window of the round
func (s *StateMachine) GetResults() (*lib.Results, lib.ErrorI) {
	ledger, err := s.GetLedger()
	if err != nil {
		return nil, err
	}
	return &lib.Results{
		A:        ledger.VotesA,
		B:        ledger.VotesB,
		Total:    ledger.Total(),
		Start:    ledger.StartBlock,
		End:      ledger.EndBlock,
		IsActive: ledger.Window().IsActive(s.height),
	}, nil
}

// GetVotingStatus() returns the state of the window at the current height
func (s *StateMachine) GetVotingStatus() (*lib.VotingStatus, lib.ErrorI) {
	ledger, err := s.GetLedger()
	if err != nil {
		return nil, err
	}
	w := ledger.Window()
	return &lib.VotingStatus{
		IsActive:      w.IsActive(s.height),
		TimeRemaining: w.TimeRemaining(s.height),
		HasStarted:    w.HasStarted(s.height),
		HasEnded:      w.HasEnded(s.height),
	}, nil
}

// GetWinner() returns the leading choice and its margin
func (s *StateMachine) GetWinner() (*lib.WinnerResult, lib.ErrorI) {
	ledger, err := s.GetLedger()
	if err != nil {
		return nil, err
	}
	winner, differential := DetermineWinner(ledger.VotesA, ledger.VotesB)
	return &lib.WinnerResult{
		Winner:       winner,
		Differential: differential,
		VotesA:       ledger.VotesA,
		VotesB:       ledger.VotesB,
		IsFinal:      ledger.Window().HasEnded(s.height),
	}, nil
}

// GetTurnout() returns the share of the electorate that voted this round
// eligible of 0 falls back to the configured electorate size
func (s *StateMachine) GetTurnout(eligible uint64) (*lib.TurnoutResult, lib.ErrorI) {
	if eligible == 0 {
		eligible = s.Config.EligibleVoters
	}
	ledger, err := s.GetLedger()
	if err != nil {
		return nil, err
	}
	return &lib.TurnoutResult{
		TotalEligible: eligible,
		TotalVoted:    ledger.Total(),
		Turnout:       Turnout(ledger.Total(), eligible),
	}, nil
}

// DetermineWinner() compares the tallies: A or B if ahead, Tie otherwise, with the absolute difference
func DetermineWinner(a, b uint64) (lib.Winner, uint64) {
	switch {
	case a > b:
		return lib.WinnerA, a - b
	case b > a:
		return lib.WinnerB, b - a
	default:
		return lib.WinnerTie, 0
	}
}

// Turnout() returns voted as a percentage of eligible; 0 when the electorate is unknown
func Turnout(voted, eligible uint64) float64 {
	if eligible == 0 {
		return 0
	}
	return float64(voted) * 100 / float64(eligible)
}
