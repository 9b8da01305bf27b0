package fsm

import (
	"fmt"

	"github.com/canopy-network/ballot/lib"
)

// This file defines error objects for the State Machine module

func ErrAlreadyVoted(voter lib.Principal) lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyVoted, lib.VotingModule, fmt.Sprintf("%s already voted this round", voter))
}

func ErrVotingNotStarted() lib.ErrorI {
	return lib.NewError(lib.CodeVotingNotStarted, lib.VotingModule, "voting has not started")
}

func ErrVotingEnded() lib.ErrorI {
	return lib.NewError(lib.CodeVotingEnded, lib.VotingModule, "voting has ended")
}

func ErrNotAuthorized(caller lib.Principal) lib.ErrorI {
	return lib.NewError(lib.CodeNotAuthorized, lib.VotingModule, fmt.Sprintf("%s is not the administrator", caller))
}

func ErrInvalidDuration() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidDuration, lib.VotingModule, "duration must be greater than zero and the end block must not overflow")
}

func ErrReadGenesisFile(err error) lib.ErrorI {
	return lib.NewError(lib.CodeReadGenesisFile, lib.VotingModule, fmt.Sprintf("read genesis file failed with err: %s", err.Error()))
}

func ErrInvalidGenesis(err lib.ErrorI) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidGenesis, lib.VotingModule, fmt.Sprintf("genesis is invalid: %s", err.Error()))
}

func ErrAlreadyDeployed(admin lib.Principal) lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyDeployed, lib.VotingModule, fmt.Sprintf("contract already deployed with administrator %s", admin))
}

func ErrNotDeployed() lib.ErrorI {
	return lib.NewError(lib.CodeNotDeployed, lib.VotingModule, "contract is not deployed")
}

func ErrInvariantViolation(msg string) lib.ErrorI {
	return lib.NewError(lib.CodeInvariantViolation, lib.VotingModule, "invariant violated: "+msg)
}

func ErrHeightNotIncreasing(current, next uint64) lib.ErrorI {
	return lib.NewError(lib.CodeHeightNotIncreasing, lib.VotingModule, fmt.Sprintf("height %d is below the current height %d", next, current))
}

func ErrWrongStoreType() lib.ErrorI {
	return lib.NewError(lib.CodeWrongStoreTyp, lib.StorageModule, "wrong store type")
}

func ErrInvalidKey(k []byte) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidArgument, lib.MainModule, fmt.Sprintf("key %x is invalid", k))
}
