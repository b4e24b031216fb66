package domain

import "github.com/jonboulle/clockwork"

// clock stamps GeorefResult.ProcessedAt. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
