// Package pht implements the Pattern History Table (C5, spec.md §4.5):
// the set-associative, OR-merging recall store a closing generation is
// recorded into, and that a new trigger access is predicted from.
package pht

import (
	"github.com/camsterrrr/scarab-sms/internal/pattern"
	"github.com/camsterrrr/scarab-sms/internal/table"
)

// Table wraps the generic table.Table backend with PHT's merge-on-read
// semantics.
type Table struct {
	backend *table.Table
}

// New builds a Pattern History Table of `entries` total capacity split
// across `numSets` sets (spec.md §4.5: unlike FT/AT, the PHT is a
// conventional multi-set tagged-associative array). obs may be nil to
// disable telemetry.
func New(entries, numSets int, obs table.Observer) *Table {
	return &Table{backend: table.New("pht", entries, numSets, table.NewPLRUFinder(), obs)}
}

// Record writes a closed generation's final pattern into the table under
// key K, evicting an LRU entry in K's set if it was already full.
func (t *Table) Record(tag uint64, p pattern.Bitmap) {
	t.backend.Insert(tag, uint64(p))
}

// Predict returns the bitwise OR of every valid entry in K's set that is
// itself tagged K, per spec.md §4.5. Record overwrites an existing entry
// tagged K in place, so through this package each K holds at most one
// entry and the prediction is the most recently recorded pattern.
func (t *Table) Predict(tag uint64) (merged pattern.Bitmap, found bool) {
	v, ok := t.backend.LookupMerged(tag)
	return pattern.Bitmap(v), ok
}
