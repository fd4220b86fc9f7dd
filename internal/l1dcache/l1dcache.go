// Package l1dcache is a toy, non-timing-accurate L1 data cache used by
// cmd/smsdemo to drive an SMS core against
// something that behaves like a real dcache_descriptor (spec.md §6.1)
// rather than a bare map. It is not part of SMS itself — spec.md treats
// the dcache as an external collaborator SMS only consumes the
// interface of.
//
// Its backing store is adapted from the flat word-addressed Memory type
// the teacher core used for its own load/store unit; here it holds
// dummy line payloads rather than instruction operands.
package l1dcache

import "github.com/camsterrrr/scarab-sms/internal/table"

// L1DCache is a set-associative cache of fixed line size, backed by
// internal/table the same way SMS's own FT/AT/PHT are — it is not a
// special case, just another tagged-associative store with a flat data
// array behind it.
type L1DCache struct {
	lineSize   uint64
	offsetMask uint64
	procID     uint64

	lines *table.Table
	store []byte // lineCapacity * lineSize bytes, indexed by way-agnostic slot
}

// New builds an L1DCache for procID with the given line size, total
// line capacity, and associativity (ways per set).
func New(procID, lineSize uint64, capacityLines, ways int) *L1DCache {
	numSets := capacityLines / ways
	if numSets <= 0 {
		numSets = 1
	}
	return &L1DCache{
		lineSize:   lineSize,
		offsetMask: lineSize - 1,
		procID:     procID,
		lines:      table.New("l1d", capacityLines, numSets, table.NewPLRUFinder(), nil),
		store:      make([]byte, uint64(capacityLines)*lineSize),
	}
}

func (c *L1DCache) LineSize() uint64   { return c.lineSize }
func (c *L1DCache) OffsetMask() uint64 { return c.offsetMask }
func (c *L1DCache) ProcID() uint64     { return c.procID }

// Contains reports whether lineAddr is resident.
func (c *L1DCache) Contains(lineAddr uint64) bool {
	return c.lines.Contains(lineAddr &^ c.offsetMask)
}

// DemandAccess simulates a normal load/store reaching the cache: a miss
// installs the line as a demand fill (not a hardware prefetch) and
// reports whatever was evicted, for the caller to feed into
// sms.SMS.OnDCacheInsert. A hit reports (0, false).
func (c *L1DCache) DemandAccess(addr uint64) (evictedAddr uint64, evicted bool) {
	lineAddr := addr &^ c.offsetMask
	if c.lines.Contains(lineAddr) {
		c.lines.Lookup(lineAddr)
		return 0, false
	}
	_, ev, evTag, _ := c.lines.Insert(lineAddr, 1)
	return evTag, ev
}

// ReadLine and WriteLine give cmd/smsdemo somewhere to put trace-replay
// payloads so a run looks like it is moving real data, the way the
// teacher core's Memory.Load/Store backed its ALU operands. SMS itself
// never calls these — it only ever sees addresses.
func (c *L1DCache) ReadLine(addr uint64) []byte {
	off := c.slotOffset(addr)
	return c.store[off : off+c.lineSize]
}

func (c *L1DCache) WriteLine(addr uint64, data []byte) {
	off := c.slotOffset(addr)
	copy(c.store[off:off+c.lineSize], data)
}

func (c *L1DCache) slotOffset(addr uint64) uint64 {
	slots := uint64(len(c.store)) / c.lineSize
	return (addr / c.lineSize % slots) * c.lineSize
}

// InstallPrefetch implements stream.Installer / dcache.Descriptor: it
// installs lineAddr through the same insert path as a DemandAccess miss,
// and is a no-op for a line that is already resident. The line is not
// marked as a hardware prefetch: once installed, a prefetched line and a
// demand fill are indistinguishable.
func (c *L1DCache) InstallPrefetch(procID, addr uint64) (evictedAddr uint64, evicted bool) {
	lineAddr := addr &^ c.offsetMask
	if c.lines.Contains(lineAddr) {
		return 0, false
	}
	_, ev, evTag, _ := c.lines.Insert(lineAddr, 1)
	return evTag, ev
}
