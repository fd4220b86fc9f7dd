package table

import "github.com/sarchlab/akita/v4/mem/cache"

// PLRUFinder is a tree-structured pseudo-LRU cache.VictimFinder: the "host
// cache library's LRU policy" that spec.md §6.2's `replacement` option
// delegates to, rather than SMS choosing a policy itself (spec.md §1
// Non-goals: "The core does not choose a replacement policy").
//
// It operates on cache.Set.PseudoLRUBits the same way
// other_examples' perceptron cache-replacement victim finder does for its
// 2/4/8-way cases, generalized here to any power-of-two associativity.
type PLRUFinder struct{}

// NewPLRUFinder returns a PLRUFinder. It carries no state of its own —
// the PLRU tree bits live on the cache.Set, since a single finder instance
// is shared across every set in a Table.
func NewPLRUFinder() *PLRUFinder {
	return &PLRUFinder{}
}

// FindVictim implements cache.VictimFinder. It prefers an invalid,
// unlocked block first (a truly free slot never needs eviction), then
// walks the pseudo-LRU tree to the least-recently-touched way.
func (f *PLRUFinder) FindVictim(set *cache.Set) *cache.Block {
	n := len(set.Blocks)
	if n == 0 {
		return nil
	}

	for _, b := range set.Blocks {
		if !b.IsValid && !b.IsLocked {
			return b
		}
	}

	way := plruWay(set.PseudoLRUBits, n)
	if way < n && !set.Blocks[way].IsLocked {
		return set.Blocks[way]
	}

	for _, b := range set.Blocks {
		if !b.IsLocked {
			return b
		}
	}
	return set.Blocks[0]
}

// Touch marks way as most-recently-used within set, so a subsequent
// FindVictim routes away from it.
func Touch(set *cache.Set, way, numWays int) {
	set.PseudoLRUBits = plruTouch(set.PseudoLRUBits, way, numWays)
}

// plruWay descends the log2(numWays)-level bit tree to the victim leaf.
// At each internal node, a clear bit routes toward the low half (the side
// not recently touched), a set bit routes toward the high half.
func plruWay(bits uint64, numWays int) int {
	node := 0
	lo, hi := 0, numWays
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if bits&(1<<uint(node)) == 0 {
			hi = mid
			node = 2*node + 1
		} else {
			lo = mid
			node = 2*node + 2
		}
	}
	return lo
}

// plruTouch flips every node bit on the path to `way` so it points away
// from the half that was just accessed.
func plruTouch(bits uint64, way, numWays int) uint64 {
	node := 0
	lo, hi := 0, numWays
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if way < mid {
			bits |= 1 << uint(node)
			node = 2*node + 1
			hi = mid
		} else {
			bits &^= 1 << uint(node)
			node = 2*node + 2
			lo = mid
		}
	}
	return bits
}
