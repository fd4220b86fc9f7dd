// Package pattern implements the spatial-region access-pattern codec (C1):
// the bitmap encoding of "which cache blocks inside a spatial region have
// been touched this generation", and the address arithmetic around it.
package pattern

import "math/bits"

// Bitmap is an access pattern: bit i set means cache line i of a region
// has been touched during the current generation. Width is bounded by 64
// (Layout.Lines), never dynamically sized — this is a hardware bitmap, not
// a slice.
type Bitmap uint64

// Layout describes the fixed geometry of a spatial region: its byte size R
// and the host dcache's line size L, giving a bitmap width B = R/L.
type Layout struct {
	RegionSize uint64 // R, bytes, power of two
	LineSize   uint64 // L, bytes, power of two
}

// Lines returns B, the bitmap width in cache lines.
func (l Layout) Lines() uint64 {
	return l.RegionSize / l.LineSize
}

// regionMask returns R-1, the mask of bits within a region.
func (l Layout) regionMask() uint64 {
	return l.RegionSize - 1
}

// RegionBase returns A & ~(R-1), the aligned base address of the region
// containing A.
func (l Layout) RegionBase(a uint64) uint64 {
	return a &^ l.regionMask()
}

// RegionOffset returns the byte offset of A within its region: A & (R-1).
func (l Layout) RegionOffset(a uint64) uint64 {
	return a & l.regionMask()
}

// LineBase returns the cache-line-aligned address containing A:
// A & ~(L-1). This is the address spec.md §4.6.b means by "the
// triggering line itself" — distinct from A, which may be any byte
// offset within that line.
func (l Layout) LineBase(a uint64) uint64 {
	return a &^ (l.LineSize - 1)
}

// LineIndex returns the index of A's cache line within its region:
// (A & (R-1)) / L. The result is not range-checked against B; callers that
// need the overflow check use PatternOf.
func (l Layout) LineIndex(a uint64) uint64 {
	return l.RegionOffset(a) / l.LineSize
}

// PatternOf computes the single-bit bitmap for address A: bit
// (A & (R-1))/L set. If that index is >= B (region_size/dcache_line_size
// misconfiguration at the address level — never possible with a conforming
// Layout, but the hardware model keeps the check so overflow is counted
// rather than indexed out of range), it returns a zero bitmap and reports
// overflow via the second return value so callers can bump
// PATTERN_OVERFLOW.
func (l Layout) PatternOf(a uint64) (p Bitmap, overflow bool) {
	idx := l.LineIndex(a)
	if idx >= l.Lines() || idx >= 64 {
		return 0, true
	}
	return Bitmap(1) << idx, false
}

// LineAddresses expands base+P into the concrete line addresses, one per
// set bit of P in ascending bit order. Finite, length == popcount(P).
func (l Layout) LineAddresses(base uint64, p Bitmap) []uint64 {
	out := make([]uint64, 0, bits.OnesCount64(uint64(p)))
	for rem := uint64(p); rem != 0; rem &= rem - 1 {
		i := bits.TrailingZeros64(rem)
		out = append(out, base+uint64(i)*l.LineSize)
	}
	return out
}

// PopCount returns the number of lines set in p.
func PopCount(p Bitmap) int {
	return bits.OnesCount64(uint64(p))
}

// Merge ORs two patterns together — the PHT's recall-biased merge (C5) and
// the FT/AT accumulation step (C3/C4) both reduce to this.
func Merge(a, b Bitmap) Bitmap {
	return a | b
}

// SameLine reports whether p is already represented in q, i.e. whether
// merging p into q would change q. Used by the FT to decide "same line
// re-accessed" vs. "second distinct line, promote to AT".
func SameLine(p, q Bitmap) bool {
	return p|q == q
}
