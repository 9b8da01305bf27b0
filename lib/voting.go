package lib

import "strings"

/* This file contains the shared value types of the voting contract */

// Principal is the opaque, host-authenticated identity of a transaction caller
type Principal string

// Check() ensures the principal is usable as a store key
func (p Principal) Check() ErrorI {
	if p == "" || len(p) > MaxPrincipalLength || strings.TrimSpace(string(p)) != string(p) {
		return ErrInvalidPrincipal()
	}
	return nil
}

func (p Principal) String() string { return string(p) }

// MaxPrincipalLength keeps principals within a single length-prefixed key segment
const MaxPrincipalLength = 255

// Choice is one of the two options of a round
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
)

// Check() ensures the choice is A or B
func (c Choice) Check() ErrorI {
	if c != ChoiceA && c != ChoiceB {
		return ErrInvalidChoice(c)
	}
	return nil
}

// Winner is the derived outcome of a round; it is never persisted
type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "Tie"
)

// Results is the response of the get-results query
type Results struct {
	A        uint64 `json:"a"`
	B        uint64 `json:"b"`
	Total    uint64 `json:"total"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	IsActive bool   `json:"isActive"`
}

// VotingStatus is the response of the get-voting-status query
type VotingStatus struct {
	IsActive      bool   `json:"isActive"`
	TimeRemaining uint64 `json:"timeRemaining"`
	HasStarted    bool   `json:"hasStarted"`
	HasEnded      bool   `json:"hasEnded"`
}

// WinnerResult is the response of the winner query
type WinnerResult struct {
	Winner       Winner `json:"winner"`
	Differential uint64 `json:"differential"`
	VotesA       uint64 `json:"votesA"`
	VotesB       uint64 `json:"votesB"`
	IsFinal      bool   `json:"isFinal"` // the round has ended, so the winner cannot change
}

// TurnoutResult is the response of the turnout query
type TurnoutResult struct {
	TotalEligible uint64  `json:"totalEligible"`
	TotalVoted    uint64  `json:"totalVoted"`
	Turnout       float64 `json:"turnout"` // percentage in [0, 100] when TotalVoted <= TotalEligible
}

// Voter is a single entry of the per-round voter record
type Voter struct {
	Principal Principal `json:"principal"`
	Choice    Choice    `json:"choice"`
	Height    uint64    `json:"height"` // the block the vote was cast at
}

// HeightResult is the response of the height query
type HeightResult struct {
	Height uint64 `json:"height"`
}
