package table

// LookupMerged implements the Pattern History Table's recall-biased
// read (spec.md §4.5 pht_predict): it ORs together every valid entry in
// tag's set that is itself tagged `tag`. Under n-way associativity the
// cache library tags on K but places by set index, so — unlike Lookup,
// which returns the first match — multiple valid entries sharing one tag
// can legally coexist in a set, and all of them contribute to the
// prediction.
//
// Every matching way's recency is touched, mirroring a real hit on each.
func (t *Table) LookupMerged(tag uint64) (merged uint64, found bool) {
	setIdx := t.setIndex(tag)
	for w, s := range t.slots[setIdx] {
		if s.block.IsValid && s.tag == tag {
			merged |= s.value
			found = true
			Touch(t.sets[setIdx], w, t.ways)
		}
	}
	if found {
		t.observe("access")
	}
	return merged, found
}
