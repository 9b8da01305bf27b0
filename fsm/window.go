package fsm

/* This file implements the block height window a round accepts votes in */

// Window is the half-open block range [Start, End) of a round
// the zero Window is the window of a round that was never initialized
type Window struct {
	Start       uint64
	End         uint64
	Initialized bool
}

// HasStarted() returns true once the current block reached the start block
func (w Window) HasStarted(current uint64) bool { return w.Initialized && current >= w.Start }

// HasEnded() returns true once the current block reached the end block
func (w Window) HasEnded(current uint64) bool { return w.Initialized && current >= w.End }

// IsActive() returns true while votes are accepted
func (w Window) IsActive(current uint64) bool { return w.HasStarted(current) && !w.HasEnded(current) }

// TimeRemaining() returns the number of blocks until the window ends; 0 if not active
func (w Window) TimeRemaining(current uint64) uint64 {
	if !w.IsActive(current) {
		return 0
	}
	return w.End - current
}
