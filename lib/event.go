package lib

import "encoding/json"

type EventType string

// the event names are part of the audit log format consumed by off-chain observers
const (
	EventTypeVotingInitialized EventType = "voting-initialized"
	EventTypeVoteCast          EventType = "vote-cast"
	EventTypeVotingClosedEarly EventType = "voting-closed-early"
)

// EventVotingInitialized is emitted when the administrator starts a round
type EventVotingInitialized struct {
	Event         EventType `json:"event"`
	StartBlock    uint64    `json:"startBlock"`
	EndBlock      uint64    `json:"endBlock"`
	Duration      uint64    `json:"duration"`
	InitializedBy Principal `json:"initializedBy"`
	Timestamp     uint64    `json:"timestamp"`
}

// EventVoteCast is emitted for each accepted vote with the tallies before and after
type EventVoteCast struct {
	Event          EventType `json:"event"`
	Voter          Principal `json:"voter"`
	Choice         Choice    `json:"choice"`
	PreviousVotesA uint64    `json:"previousVotesA"`
	NewVotesA      uint64    `json:"newVotesA"`
	PreviousVotesB uint64    `json:"previousVotesB"`
	NewVotesB      uint64    `json:"newVotesB"`
	TotalVotes     uint64    `json:"totalVotes"`
	BlockHeight    uint64    `json:"blockHeight"`
}

// EventVotingClosedEarly is emitted when the administrator ends a round before its end block
type EventVotingClosedEarly struct {
	Event            EventType `json:"event"`
	ClosedBy         Principal `json:"closedBy"`
	OriginalEndBlock uint64    `json:"originalEndBlock"`
	NewEndBlock      uint64    `json:"newEndBlock"`
	FinalVotesA      uint64    `json:"finalVotesA"`
	FinalVotesB      uint64    `json:"finalVotesB"`
	TotalVotes       uint64    `json:"totalVotes"`
	Timestamp        uint64    `json:"timestamp"`
}

// Event is the indexed envelope of an emitted event
type Event struct {
	EventType EventType       `json:"eventType"`
	Height    uint64          `json:"height"`
	Index     uint64          `json:"index"`     // position among the events of the height
	Reference string          `json:"reference"` // the hash of the transaction that emitted it
	Msg       json.RawMessage `json:"msg"`
}

// NewEvent() wraps a typed event payload into the indexed envelope
func NewEvent(eventType EventType, height uint64, reference string, msg any) (*Event, ErrorI) {
	bz, err := MarshalJSON(msg)
	if err != nil {
		return nil, err
	}
	return &Event{EventType: eventType, Height: height, Reference: reference, Msg: bz}, nil
}

// Decode() unmarshals the payload into the typed event matching EventType
func (e *Event) Decode() (any, ErrorI) {
	var ptr any
	switch e.EventType {
	case EventTypeVotingInitialized:
		ptr = new(EventVotingInitialized)
	case EventTypeVoteCast:
		ptr = new(EventVoteCast)
	case EventTypeVotingClosedEarly:
		ptr = new(EventVotingClosedEarly)
	default:
		return nil, ErrInvalidArgument()
	}
	if err := UnmarshalJSON(e.Msg, ptr); err != nil {
		return nil, err
	}
	return ptr, nil
}

type Events []*Event

// EventsTracker collects the events of the transaction being applied
type EventsTracker struct {
	Reference string // the tx hash the following events belong to
	Events    Events
}

// Add() adds an event to the tracker
func (t *EventsTracker) Add(event *Event) ErrorI {
	if t == nil {
		return ErrEmptyEventsTracker()
	}
	t.Events = append(t.Events, event)
	return nil
}

// Refer() sets a reference string for the event tracker
func (t *EventsTracker) Refer(s string) {
	if t == nil {
		return
	}
	t.Reference = s
}

// GetReference() is an accessor for the reference string
func (t *EventsTracker) GetReference() string {
	if t == nil {
		return ""
	}
	return t.Reference
}

// Reset() resets the event tracker and returns the captured events
func (t *EventsTracker) Reset() (e Events) {
	if t == nil {
		return
	}
	e = t.Events
	t.Events, t.Reference = nil, ""
	return
}
