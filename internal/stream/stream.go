// Package stream implements the Stream Emitter (C7, spec.md §4.7): the
// component that turns a merged prediction into a bounded run of
// prefetch installs against the host dcache.
package stream

import (
	"github.com/camsterrrr/scarab-sms/internal/pattern"
)

// Installer is the narrow slice of the host dcache_descriptor (spec.md
// §6.1) the emitter needs: a way to push one prefetched line in and
// learn what, if anything, it evicted.
type Installer interface {
	InstallPrefetch(procID, addr uint64) (evictedAddr uint64, evicted bool)
}

// Eviction records a line the host dcache evicted as a side effect of
// one of this emitter's installs. The Generation Controller re-enters
// on_dcache_insert for each of these in the same call stack that
// produced them (spec.md §4.7, §5).
type Eviction struct {
	Addr uint64
}

// Emit expands merged into concrete line addresses around regionBase
// (pattern.LineAddresses) and installs each one that is not the
// triggering line itself. Popcount(merged) bounds how many lines are
// ever issued — the emitter never issues more than the prediction names.
//
// Deduplicating against lines already resident in the host dcache is
// left to Installer.InstallPrefetch: a real dcache install of an
// already-present line is a safe no-op there, and the host — not this
// package — owns that presence check (spec.md §1: "does not perform any
// bus-level timing or request issuance... issuing them onto the memory
// hierarchy is the host's job").
func Emit(inst Installer, layout pattern.Layout, procID, regionBase uint64, triggerLineAddr uint64, merged pattern.Bitmap) []Eviction {
	var evictions []Eviction
	for _, addr := range layout.LineAddresses(regionBase, merged) {
		if addr == triggerLineAddr {
			continue
		}
		if evAddr, ok := inst.InstallPrefetch(procID, addr); ok {
			evictions = append(evictions, Eviction{Addr: evAddr})
		}
	}
	return evictions
}
