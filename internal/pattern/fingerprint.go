package pattern

// Mode selects one of the two trigger-key strategies spec.md §3 describes.
// The choice is a single compile-time (well: construction-time) constant
// per SMS instance — spec.md is explicit that this must never be silently
// picked, so both are implemented and Config surfaces the choice.
type Mode int

const (
	// ModeRegionBase computes K = region_base(A) = A &^ (R-1). Stable
	// across generation-close events since it never depends on a PC that
	// might already have been evicted from whatever table remembered it.
	// This is the revision the original Scarab source ultimately settled
	// on, and spec.md's test scenarios (S1-S6) assume it.
	ModeRegionBase Mode = iota

	// ModePCPlusOffset computes K = PC + offset_within_region(A), the SMS
	// paper's recommended trigger. Better spatial correlation in the
	// steady state, at the cost of losing the key if the PC used to open
	// the generation isn't available when it closes.
	ModePCPlusOffset
)

// Fingerprint computes the trigger key K for an access at address a with
// program counter pc, under the configured mode.
func (l Layout) Fingerprint(mode Mode, pc, a uint64) uint64 {
	switch mode {
	case ModePCPlusOffset:
		return pc + l.RegionOffset(a)
	default:
		return l.RegionBase(a)
	}
}
