package fsm

import (
	"github.com/canopy-network/ballot/lib"
)

// addEvent() indexes an event payload at the current height and adds it to the tracker
func (s *StateMachine) addEvent(eventType lib.EventType, msg any) (*lib.Event, lib.ErrorI) {
	e, err := lib.NewEvent(eventType, s.Height(), s.events.GetReference(), msg)
	if err != nil {
		return nil, err
	}
	if e.Index, err = s.nextEventIndex(e.Height); err != nil {
		return nil, err
	}
	bz, err := lib.MarshalJSON(e)
	if err != nil {
		return nil, err
	}
	if err = s.Set(KeyForEvent(e.Height, e.Index), bz); err != nil {
		return nil, err
	}
	return e, s.events.Add(e)
}

// nextEventIndex() returns the position the next event of the height is indexed at
func (s *StateMachine) nextEventIndex(height uint64) (uint64, lib.ErrorI) {
	it, err := s.Store().RevIterator(EventsPrefixForHeight(height))
	if err != nil {
		return 0, err
	}
	defer it.Close()
	if !it.Valid() {
		return 0, nil
	}
	last := new(lib.Event)
	if err = lib.UnmarshalJSON(it.Value(), last); err != nil {
		return 0, err
	}
	return last.Index + 1, nil
}

// GetEventsByHeight() returns the events emitted at a height in the order they occurred
func (s *StateMachine) GetEventsByHeight(height uint64) (events lib.Events, err lib.ErrorI) {
	err = s.IterateAndExecute(EventsPrefixForHeight(height), func(_, value []byte) lib.ErrorI {
		e := new(lib.Event)
		if er := lib.UnmarshalJSON(value, e); er != nil {
			return er
		}
		events = append(events, e)
		return nil
	})
	return
}
