package sms

import "github.com/pkg/errors"

// Sentinel init-time validation errors (spec.md §7: "fatal only at
// construction; no runtime operation returns an error"). Created with
// github.com/pkg/errors.New at package initialization; Validate and New
// return them unwrapped, so callers match them with errors.Is. LoadConfig
// wraps only the config-file read error.
var (
	// ErrRegionSizeNotPowerOfTwo is returned when Config.RegionSize isn't
	// a power of two, violating the region-mask arithmetic's only
	// precondition.
	ErrRegionSizeNotPowerOfTwo = errors.New("sms: region_size must be a power of two")

	// ErrLineSizeNotPowerOfTwo is returned when the host dcache's line
	// size isn't a power of two.
	ErrLineSizeNotPowerOfTwo = errors.New("sms: dcache line_size must be a power of two")

	// ErrRegionSmallerThanLine is returned when RegionSize < LineSize,
	// which would make a region hold less than one full line.
	ErrRegionSmallerThanLine = errors.New("sms: region_size must be >= dcache line_size")

	// ErrBitmapTooWide is returned when B = region_size/line_size > 64 —
	// the access-pattern bitmap (invariant I1) would not fit a uint64.
	ErrBitmapTooWide = errors.New("sms: region_size/line_size exceeds the 64-line bitmap width")

	// ErrZeroCapacity is returned when any of FTEntries, ATEntries, or
	// PHTEntries is <= 0.
	ErrZeroCapacity = errors.New("sms: table capacities must be positive")

	// ErrPHTSetsNotDivisor is returned when PHTSets does not evenly
	// divide PHTEntries.
	ErrPHTSetsNotDivisor = errors.New("sms: pht_sets must evenly divide pht_entries")
)

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
