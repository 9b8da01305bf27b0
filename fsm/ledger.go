package fsm

import (
	"fmt"

	"github.com/canopy-network/ballot/lib"
)

/* This file implements the persistence of the vote ledger: the singleton round record and its voters */

// Ledger is the singleton state record of the contract
// the voters of the round are stored separately under the voter prefix
type Ledger struct {
	Administrator lib.Principal `json:"administrator"` // fixed at deployment
	StartBlock    uint64        `json:"startBlock"`
	EndBlock      uint64        `json:"endBlock"` // exclusive; may be shortened by an early closure
	VotesA        uint64        `json:"votesA"`
	VotesB        uint64        `json:"votesB"`
	Initialized   bool          `json:"initialized"`
	ClosedEarly   bool          `json:"closedEarly"`
	Round         uint64        `json:"round"` // number of rounds initialized so far
}

// Window() returns the block window of the round
func (l *Ledger) Window() Window {
	return Window{Start: l.StartBlock, End: l.EndBlock, Initialized: l.Initialized}
}

// Total() returns the total number of votes of the round
func (l *Ledger) Total() uint64 { return l.VotesA + l.VotesB }

// GetLedger() retrieves the ledger; the zero Ledger if the contract isn't deployed
func (s *StateMachine) GetLedger() (*Ledger, lib.ErrorI) {
	ledger := new(Ledger)
	bz, err := s.Get(KeyForLedger())
	if err != nil || bz == nil {
		return ledger, err
	}
	if err = lib.UnmarshalJSON(bz, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// SetLedger() upserts the ledger
func (s *StateMachine) SetLedger(ledger *Ledger) lib.ErrorI {
	bz, err := lib.MarshalJSON(ledger)
	if err != nil {
		return err
	}
	return s.Set(KeyForLedger(), bz)
}

// getDeployedLedger() retrieves the ledger and fails if there is no administrator
func (s *StateMachine) getDeployedLedger() (*Ledger, lib.ErrorI) {
	ledger, err := s.GetLedger()
	if err != nil {
		return nil, err
	}
	if ledger.Administrator == "" {
		return nil, ErrNotDeployed()
	}
	return ledger, nil
}

// GetVoter() retrieves the vote of a principal in the current round; nil if they haven't voted
func (s *StateMachine) GetVoter(principal lib.Principal) (*lib.Voter, lib.ErrorI) {
	if err := principal.Check(); err != nil {
		return nil, err
	}
	bz, err := s.Get(KeyForVoter(principal))
	if err != nil || bz == nil {
		return nil, err
	}
	voter := new(lib.Voter)
	if err = lib.UnmarshalJSON(bz, voter); err != nil {
		return nil, err
	}
	return voter, nil
}

// HasVoted() returns true if the principal voted in the current round
func (s *StateMachine) HasVoted(principal lib.Principal) (bool, lib.ErrorI) {
	voter, err := s.GetVoter(principal)
	return voter != nil, err
}

// SetVoter() records the vote of a principal
func (s *StateMachine) SetVoter(voter *lib.Voter) lib.ErrorI {
	bz, err := lib.MarshalJSON(voter)
	if err != nil {
		return err
	}
	return s.Set(KeyForVoter(voter.Principal), bz)
}

// GetVoters() lists the voters of the current round in store key order (principal length, then bytes)
func (s *StateMachine) GetVoters() (voters []*lib.Voter, err lib.ErrorI) {
	err = s.IterateAndExecute(VoterPrefix(), func(_, value []byte) lib.ErrorI {
		voter := new(lib.Voter)
		if e := lib.UnmarshalJSON(value, voter); e != nil {
			return e
		}
		voters = append(voters, voter)
		return nil
	})
	return
}

// ClearVoters() removes every voter record, discarding the history of the previous round
func (s *StateMachine) ClearVoters() lib.ErrorI { return s.DeleteAll(VoterPrefix()) }

// CheckInvariants() verifies the ledger is consistent with the voter records
func (s *StateMachine) CheckInvariants() lib.ErrorI {
	ledger, err := s.GetLedger()
	if err != nil {
		return err
	}
	if ledger.Initialized && ledger.EndBlock < ledger.StartBlock {
		return ErrInvariantViolation(fmt.Sprintf("end block %d is before start block %d", ledger.EndBlock, ledger.StartBlock))
	}
	var a, b uint64
	if err = s.IterateAndExecute(VoterPrefix(), func(key, value []byte) lib.ErrorI {
		voter := new(lib.Voter)
		if e := lib.UnmarshalJSON(value, voter); e != nil {
			return e
		}
		principal, e := PrincipalFromVoterKey(key)
		if e != nil {
			return e
		}
		if principal != voter.Principal {
			return ErrInvariantViolation(fmt.Sprintf("voter record %s stored under %s", voter.Principal, principal))
		}
		switch voter.Choice {
		case lib.ChoiceA:
			a++
		case lib.ChoiceB:
			b++
		default:
			return ErrInvariantViolation(fmt.Sprintf("voter %s has choice %q", voter.Principal, voter.Choice))
		}
		return nil
	}); err != nil {
		return err
	}
	if a != ledger.VotesA || b != ledger.VotesB {
		return ErrInvariantViolation(fmt.Sprintf("tallies %d/%d disagree with %d/%d voter records", ledger.VotesA, ledger.VotesB, a, b))
	}
	return nil
}
