package lib

import (
	"fmt"
	"math"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// AsError() converts any ErrorI into the concrete, serializable *Error
func AsError(err ErrorI) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewError(err.Code(), err.Module(), err.Error())
}

// IsCode() returns true if err is a non-nil ErrorI of the given module and code
func IsCode(err error, module ErrorModule, code ErrorCode) bool {
	e, ok := err.(ErrorI)
	if !ok || e == nil {
		return false
	}
	return e.Module() == module && e.Code() == code
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal      ErrorCode = 1
	CodeJSONUnmarshal    ErrorCode = 2
	CodeWriteFile        ErrorCode = 3
	CodeReadFile         ErrorCode = 4
	CodeInvalidArgument  ErrorCode = 5
	CodePanic            ErrorCode = 6
	CodeEmptyEventsTrack ErrorCode = 7
	CodeInvalidPrincipal ErrorCode = 8
	CodeInvalidChoice    ErrorCode = 9
	CodeUnknownMsgType   ErrorCode = 10
	CodeEmptyTransaction ErrorCode = 11
	CodeLogWrite         ErrorCode = 12

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB        ErrorCode = 1
	CodeCloseDB       ErrorCode = 2
	CodeStoreSet      ErrorCode = 3
	CodeStoreGet      ErrorCode = 4
	CodeStoreDelete   ErrorCode = 5
	CodeCommitDB      ErrorCode = 6
	CodeWrongStoreTyp ErrorCode = 7

	// Voting Module
	VotingModule ErrorModule = "voting"

	// Voting Module Error Codes; these are the contract result codes observed on chain
	CodeAlreadyVoted     ErrorCode = 100
	CodeVotingNotStarted ErrorCode = 101
	CodeVotingEnded      ErrorCode = 102
	CodeNotAuthorized    ErrorCode = 103
	CodeInvalidDuration  ErrorCode = 104

	// Voting Module deployment codes
	CodeReadGenesisFile     ErrorCode = 200
	CodeInvalidGenesis      ErrorCode = 201
	CodeAlreadyDeployed     ErrorCode = 202
	CodeNotDeployed         ErrorCode = 203
	CodeInvariantViolation  ErrorCode = 204
	CodeHeightNotIncreasing ErrorCode = 205

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeServerTimeout  ErrorCode = 1
	CodeInvalidParams  ErrorCode = 2
	CodeNewHTTPRequest ErrorCode = 3
	CodeHTTPPost       ErrorCode = 4
	CodeHTTPGet        ErrorCode = 5
	CodeReadBody       ErrorCode = 6
	CodeHTTPStatus     ErrorCode = 7
)

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrPanic() ErrorI {
	return NewError(CodePanic, MainModule, "panic recovery")
}

func ErrEmptyEventsTracker() ErrorI {
	return NewError(CodeEmptyEventsTrack, MainModule, "events tracker is nil")
}

func ErrInvalidPrincipal() ErrorI {
	return NewError(CodeInvalidPrincipal, MainModule, "principal is empty or malformed")
}

func ErrInvalidChoice(c Choice) ErrorI {
	return NewError(CodeInvalidChoice, MainModule, fmt.Sprintf("choice %q is invalid, expected A or B", string(c)))
}

func ErrUnknownMessageType(t MessageType) ErrorI {
	return NewError(CodeUnknownMsgType, MainModule, fmt.Sprintf("message type %q is unknown", string(t)))
}

func ErrEmptyTransaction() ErrorI {
	return NewError(CodeEmptyTransaction, MainModule, "transaction is empty")
}

func newLogError(err error) ErrorI {
	return NewError(CodeLogWrite, MainModule, err.Error())
}

func ErrServerTimeout() ErrorI {
	return NewError(CodeServerTimeout, RPCModule, "server timeout")
}
