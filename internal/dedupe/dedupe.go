package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent read requests. Clients poll the battle queue on a timer, so
// many callers ask for the same channel at once; only one computation runs
// per key while the other callers wait for its result.
//
// Flight keys carry the write generation. Writers call MarkWrite once their
// change is committed, so a read issued after a write never joins a flight
// that started before it.

import (
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// QueueGroup deduplicates turn-order computations keyed by channel id.
var QueueGroup singleflight.Group

// RosterGroup deduplicates full scans of the active roster.
var RosterGroup singleflight.Group

var generation atomic.Uint64

// MarkWrite advances the write generation. Call it after a write that can
// change the roster or an encounter has been persisted.
func MarkWrite() {
	generation.Add(1)
}

// Key returns id scoped to the current write generation.
func Key(id string) string {
	return id + ":" + strconv.FormatUint(generation.Load(), 10)
}
