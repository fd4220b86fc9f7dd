// Package table implements the uniform tagged-associative Table Backend
// (C2) shared by the Filter Table, Accumulation Table, and Pattern History
// Table (spec.md §4.2). A single parameterized type backs all three — only
// capacity and associativity differ between instantiations.
//
// Storage and replacement are delegated to
// github.com/sarchlab/akita/v4/mem/cache: each set is a *cache.Set, and
// eviction goes through a cache.VictimFinder (PLRUFinder, in this
// package). spec.md treats "the generic set-associative cache library
// used to back the PHT" as an external collaborator rather than something
// SMS reimplements — Akita's cache package is that collaborator.
package table

import (
	"github.com/sarchlab/akita/v4/mem/cache"
)

// InsertOutcome classifies what Insert did to the slot tagged K, for the
// {insert} telemetry counters of spec.md §6.3.
type InsertOutcome int

const (
	// Fresh means K was not previously present in its set.
	Fresh InsertOutcome = iota
	// ReplacedSamePattern means K was present and the new value equals
	// the old one.
	ReplacedSamePattern
	// ReplacedDifferentPattern means K was present and the new value
	// differs from the old one.
	ReplacedDifferentPattern
)

type slot struct {
	block *cache.Block
	tag   uint64
	value uint64
}

// Observer receives telemetry for table operations (spec.md §6.3's
// per-table operation counters). Table calls it unconditionally when
// non-nil; nil means "no telemetry", which every test in this package
// uses.
type Observer interface {
	ObserveTableOp(tableName, op string)
}

// Table is a uniform tagged-associative store: numSets sets of ways
// entries each, keyed by an opaque uint64 tag with an opaque uint64
// payload (the access-pattern bitmap, from the caller's point of view —
// Table itself is payload-agnostic, per spec.md's design note that FT, AT,
// and PHT "share a tagged-associative interface... implement as one
// concrete data type").
type Table struct {
	name    string
	numSets int
	ways    int
	sets    []*cache.Set
	slots   [][]slot
	victim  cache.VictimFinder
	obs     Observer
}

// New builds a Table with the given total entry capacity split into
// numSets sets of `entries/numSets` ways each. A fully-associative table
// (the paper-sized Filter/Accumulation Tables) is numSets == 1. obs may
// be nil to disable telemetry.
func New(name string, entries, numSets int, victim cache.VictimFinder, obs Observer) *Table {
	if numSets <= 0 {
		numSets = 1
	}
	ways := entries / numSets
	if ways <= 0 {
		ways = 1
	}

	t := &Table{
		name:    name,
		numSets: numSets,
		ways:    ways,
		sets:    make([]*cache.Set, numSets),
		slots:   make([][]slot, numSets),
		victim:  victim,
		obs:     obs,
	}
	for s := 0; s < numSets; s++ {
		blocks := make([]*cache.Block, ways)
		entrySlots := make([]slot, ways)
		for w := 0; w < ways; w++ {
			blocks[w] = &cache.Block{IsValid: false}
			entrySlots[w] = slot{block: blocks[w]}
		}
		t.sets[s] = &cache.Set{Blocks: blocks}
		t.slots[s] = entrySlots
	}
	return t
}

// Name reports which table this backs (for telemetry labels).
func (t *Table) Name() string { return t.name }

// NumSets and Ways report the table's associativity geometry.
func (t *Table) NumSets() int { return t.numSets }
func (t *Table) Ways() int    { return t.ways }

func (t *Table) setIndex(tag uint64) int {
	if t.numSets == 1 {
		return 0
	}
	return int(tag % uint64(t.numSets))
}

func (t *Table) find(setIdx int, tag uint64) int {
	for w, s := range t.slots[setIdx] {
		if s.block.IsValid && s.tag == tag {
			return w
		}
	}
	return -1
}

// Lookup returns the value tagged K and true if present, touching LRU
// recency on a hit. Returns (0, false) on a miss — a normal control-flow
// outcome per spec.md §7, never an error.
func (t *Table) Lookup(tag uint64) (uint64, bool) {
	setIdx := t.setIndex(tag)
	way := t.find(setIdx, tag)
	if way < 0 {
		return 0, false
	}
	Touch(t.sets[setIdx], way, t.ways)
	t.observe("access")
	return t.slots[setIdx][way].value, true
}

// Contains reports whether K is present, without touching recency.
func (t *Table) Contains(tag uint64) bool {
	setIdx := t.setIndex(tag)
	hit := t.find(setIdx, tag) >= 0
	t.observe("check")
	return hit
}

func (t *Table) observe(op string) {
	if t.obs != nil {
		t.obs.ObserveTableOp(t.name, op)
	}
}

// Insert writes value into the slot chosen for tag, evicting the set's
// LRU victim when full. It reports the same-tag InsertOutcome for
// telemetry, plus whether an entry belonging to a *different* tag was
// evicted to make room and what that entry held — the
// {same-eviction, different-eviction, no-eviction} telemetry split of
// spec.md §6.3.
func (t *Table) Insert(tag, value uint64) (outcome InsertOutcome, evicted bool, evictedTag, evictedValue uint64) {
	setIdx := t.setIndex(tag)
	set := t.sets[setIdx]

	if way := t.find(setIdx, tag); way >= 0 {
		old := t.slots[setIdx][way].value
		t.slots[setIdx][way].value = value
		Touch(set, way, t.ways)
		t.observe("update")
		if old == value {
			return ReplacedSamePattern, false, 0, 0
		}
		return ReplacedDifferentPattern, false, 0, 0
	}

	victimBlock := t.victim.FindVictim(set)
	way := t.wayOf(setIdx, victimBlock)

	s := &t.slots[setIdx][way]
	wasValid := s.block.IsValid
	if wasValid {
		evicted = true
		evictedTag = s.tag
		evictedValue = s.value
	}

	s.tag = tag
	s.value = value
	s.block.IsValid = true
	Touch(set, way, t.ways)

	t.observe("insert")
	switch {
	case !evicted:
		t.observe("no-eviction")
	case evictedValue == value:
		t.observe("same-eviction")
	default:
		t.observe("different-eviction")
	}

	return Fresh, evicted, evictedTag, evictedValue
}

// Invalidate clears the entry tagged K if present; a no-op otherwise. It
// never touches the recency of any other slot, per the §4.2 behavioral
// contract.
func (t *Table) Invalidate(tag uint64) {
	setIdx := t.setIndex(tag)
	way := t.find(setIdx, tag)
	if way < 0 {
		return
	}
	s := &t.slots[setIdx][way]
	s.block.IsValid = false
	s.tag = 0
	s.value = 0
	t.observe("invalidate")
}

func (t *Table) wayOf(setIdx int, b *cache.Block) int {
	for w, s := range t.slots[setIdx] {
		if s.block == b {
			return w
		}
	}
	// Defensive fallback: a VictimFinder that returns a block outside
	// this set's slice would be a contract violation by the backing
	// library; fall back to way 0 rather than index out of range.
	return 0
}
