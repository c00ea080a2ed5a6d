// Package tokenmeta resolves SPL token mints into human-readable metadata
// (name, symbol, decimals) by reading the mint's Metaplex metadata account at
// its program derived address, memoizing every result for the lifetime of the
// process.
package tokenmeta

import "time"

// Metadata describes a fungible token. It is produced once per mint and is
// immutable afterwards.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Sentinel is the fallback returned whenever resolution fails or the metadata
// account does not exist. It is cached like any real result so that known-bad
// mints are not re-fetched on every transaction.
var Sentinel = Metadata{
	Name:     "Unknown",
	Symbol:   "UNKNOWN",
	Decimals: 0,
}

// EntryState tags a cache entry with how the resolution ended.
type EntryState string

const (
	// EntryResolved marks metadata successfully read from chain. Final for the
	// process lifetime.
	EntryResolved EntryState = "resolved"

	// EntryAbsent marks a mint whose metadata account does not exist or could
	// not be parsed. Final for the process lifetime.
	EntryAbsent EntryState = "absent"

	// EntryTransient marks a resolution that failed for reasons that may heal
	// (network errors, RPC hiccups). Eligible for re-fetch after a grace
	// window.
	EntryTransient EntryState = "transient"
)

// Entry is what the cache stores per mint: the metadata (possibly the
// sentinel), the state tag, and when the resolution happened.
type Entry struct {
	Metadata  Metadata
	State     EntryState
	FetchedAt time.Time
}

// Final reports whether the entry should never be re-fetched.
func (e Entry) Final() bool {
	return e.State == EntryResolved || e.State == EntryAbsent
}
