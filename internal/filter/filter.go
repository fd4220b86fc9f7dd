// Package filter implements the Filter Table (C3, spec.md §4.3): the
// single-touch staging area a spatial region passes through before it is
// trusted enough to accumulate into the Accumulation Table.
package filter

import (
	"github.com/camsterrrr/scarab-sms/internal/pattern"
	"github.com/camsterrrr/scarab-sms/internal/table"
)

// Outcome classifies what an Access call did. The Generation Controller
// acts on Promoted; no telemetry counter is kept per outcome.
type Outcome int

const (
	// Inserted means K was not present; a fresh trigger entry was opened.
	Inserted Outcome = iota
	// Retained means K was present and the access fell in the same
	// cache line already recorded — the entry was left unchanged.
	Retained
	// Promoted means K was present and the access fell in a second,
	// distinct line; the caller must move p|q into the Accumulation
	// Table and this entry has already been invalidated.
	Promoted
)

// Table wraps the generic table.Table backend with the FT-specific access
// discipline: a region holds a single line while resident here; repeat
// accesses to that line leave it unchanged, a second distinct line
// promotes it, and a generation close discards it.
type Table struct {
	backend *table.Table
}

// New builds a Filter Table sized for `entries` fully-associative slots.
// The Filter Table is small and always fully-associative in Scarab's own
// sizing (spec.md §4.3 gives no set-count knob), so numSets is fixed at 1.
// obs may be nil to disable telemetry.
func New(entries int, obs table.Observer) *Table {
	return &Table{backend: table.New("ft", entries, 1, table.NewPLRUFinder(), obs)}
}

// Contains reports whether K currently has a staged entry, without
// disturbing replacement recency — used by the Generation Controller's
// contains_active check (spec.md §4.6).
func (t *Table) Contains(tag uint64) bool {
	return t.backend.Contains(tag)
}

// Access implements spec.md §4.3's FT access logic for a K that is known
// not to be live in the Accumulation Table (the controller checks AT
// first). p is the access pattern of the current access.
//
//   - K not present: open a trigger entry holding p. Outcome Inserted.
//   - K present holding q, and p is already covered by q (same line):
//     leave the entry unchanged. Outcome Retained.
//   - K present holding q, and p names a second, distinct line: this
//     entry is promoted. The FT slot is invalidated here; the caller is
//     responsible for writing p|q into the Accumulation Table.
func (t *Table) Access(tag uint64, p pattern.Bitmap) (outcome Outcome, merged pattern.Bitmap) {
	q, ok := t.backend.Lookup(tag)
	if !ok {
		t.backend.Insert(tag, uint64(p))
		return Inserted, p
	}

	existing := pattern.Bitmap(q)
	if pattern.SameLine(p, existing) {
		return Retained, existing
	}

	merged = pattern.Merge(p, existing)
	t.backend.Invalidate(tag)
	return Promoted, merged
}

// Peek returns K's staged pattern, for tests and diagnostics. It reads
// through the backend's Lookup, so a hit refreshes K's replacement
// recency like any other lookup.
func (t *Table) Peek(tag uint64) (pattern.Bitmap, bool) {
	v, ok := t.backend.Lookup(tag)
	return pattern.Bitmap(v), ok
}

// Invalidate drops K's staged entry, if any — used when a generation
// closes (spec.md §4.6 on_dcache_insert) while it still only lived in
// the Filter Table.
func (t *Table) Invalidate(tag uint64) {
	t.backend.Invalidate(tag)
}
