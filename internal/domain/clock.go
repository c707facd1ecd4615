package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessedAt during enrichment. Swappable so tests and the
// fixture generator can produce deterministic timestamps.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the enrichment time source. A nil clock restores the
// real one.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
