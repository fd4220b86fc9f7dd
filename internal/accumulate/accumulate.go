// Package accumulate implements the Accumulation Table (C4, spec.md
// §4.4): the live-generation store that OR-accumulates every subsequent
// access into a region's pattern once the Filter Table has promoted it.
package accumulate

import (
	"github.com/camsterrrr/scarab-sms/internal/pattern"
	"github.com/camsterrrr/scarab-sms/internal/table"
)

// Table wraps the generic table.Table backend with AT's OR-accumulate
// access discipline.
type Table struct {
	backend *table.Table
}

// New builds an Accumulation Table sized for `entries` fully-associative
// generations — one per concurrently open region, per spec.md §4.4. obs
// may be nil to disable telemetry.
func New(entries int, obs table.Observer) *Table {
	return &Table{backend: table.New("at", entries, 1, table.NewPLRUFinder(), obs)}
}

// Contains reports whether K has a live generation, without touching
// replacement recency.
func (t *Table) Contains(tag uint64) bool {
	return t.backend.Contains(tag)
}

// Accumulate ORs p into K's live pattern and returns the updated value.
// If K has no live generation it changes nothing and returns ok == false;
// the Generation Controller relies on that miss as its AT membership
// check before falling through to the Filter Table.
func (t *Table) Accumulate(tag uint64, p pattern.Bitmap) (merged pattern.Bitmap, ok bool) {
	q, found := t.backend.Lookup(tag)
	if !found {
		return 0, false
	}
	merged = pattern.Merge(p, pattern.Bitmap(q))
	t.backend.Insert(tag, uint64(merged))
	return merged, true
}

// Open installs a brand-new live generation for K with initial pattern p
// — used when the Filter Table promotes K into the Accumulation Table.
// It reports whether the insert evicted another generation to make room,
// and that generation's key and pattern, so the caller (the Generation
// Controller) can close it out through the Pattern History Table first
// (spec.md §4.4's "transfer" step, §5's re-entrancy note: capture the
// evicted entry into a local before calling pht_record).
func (t *Table) Open(tag uint64, p pattern.Bitmap) (evicted bool, evictedTag uint64, evictedPattern pattern.Bitmap) {
	_, ev, evTag, evVal := t.backend.Insert(tag, uint64(p))
	return ev, evTag, pattern.Bitmap(evVal)
}

// Peek returns K's live pattern, for tests and diagnostics. It reads
// through the backend's Lookup, so a hit refreshes K's replacement
// recency like any other lookup.
func (t *Table) Peek(tag uint64) (pattern.Bitmap, bool) {
	v, ok := t.backend.Lookup(tag)
	return pattern.Bitmap(v), ok
}

// Close removes K's live generation, returning its final pattern if one
// existed. Used when a generation ends via on_dcache_insert (any line of
// its region is evicted from the host dcache) rather than by capacity
// pressure inside the Accumulation Table.
func (t *Table) Close(tag uint64) (p pattern.Bitmap, ok bool) {
	v, found := t.backend.Lookup(tag)
	if !found {
		return 0, false
	}
	t.backend.Invalidate(tag)
	return pattern.Bitmap(v), true
}
