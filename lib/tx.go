package lib

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// MessageType names the contract operation a transaction invokes
type MessageType string

const (
	MessageTypeInitializeVoting MessageType = "initialize-voting"
	MessageTypeVote             MessageType = "vote"
	MessageTypeCloseVotingEarly MessageType = "close-voting-early"
)

// Transaction is the envelope the host hands to the contract
// Caller is authenticated by the host and trusted as given
type Transaction struct {
	Type   MessageType     `json:"type"`
	Caller Principal       `json:"caller"`
	Msg    json.RawMessage `json:"msg,omitempty"`
	Nonce  uint64          `json:"nonce,omitempty"` // distinguishes otherwise identical submissions
}

// MessageInitializeVoting starts a new round lasting Duration blocks
type MessageInitializeVoting struct {
	Duration uint64 `json:"duration"`
}

// MessageVote casts the caller's single vote of the round
type MessageVote struct {
	Choice Choice `json:"choice"`
}

// MessageCloseVotingEarly ends the active round at the current block
type MessageCloseVotingEarly struct{}

// NewTransaction() builds a transaction envelope around a typed message
func NewTransaction(t MessageType, caller Principal, msg any) (*Transaction, ErrorI) {
	tx := &Transaction{Type: t, Caller: caller}
	if msg != nil {
		bz, err := MarshalJSON(msg)
		if err != nil {
			return nil, err
		}
		tx.Msg = bz
	}
	return tx, nil
}

// Check() performs stateless validation of the envelope
func (x *Transaction) Check() ErrorI {
	if x == nil {
		return ErrEmptyTransaction()
	}
	if err := x.Caller.Check(); err != nil {
		return err
	}
	switch x.Type {
	case MessageTypeInitializeVoting, MessageTypeVote, MessageTypeCloseVotingEarly:
		return nil
	default:
		return ErrUnknownMessageType(x.Type)
	}
}

// Hash() returns the hex encoded sha256 of the canonical json encoding, used as the event reference
func (x *Transaction) Hash() (string, ErrorI) {
	bz, err := MarshalJSON(x)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(bz)
	return hex.EncodeToString(h[:]), nil
}

// TxResult is the outcome of applying a transaction: exactly one of Event or Error is set
type TxResult struct {
	TxHash string      `json:"txHash"`
	Height uint64      `json:"height"`
	Type   MessageType `json:"type"`
	Caller Principal   `json:"caller"`
	Event  *Event      `json:"event,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// Success() returns true if the transaction committed
func (r *TxResult) Success() bool { return r != nil && r.Error == nil }
