package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessingStatus in Finalize. Tests freeze it with SetClock so
// artifact attributes are reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for finalization. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
