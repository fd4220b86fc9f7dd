package dcache

// Fake is a minimal Descriptor backed by a plain set, sized with a
// fixed-capacity FIFO eviction order. It exists for SMS's own scenario
// tests, where a full timing-accurate L1 model would be out of scope
// (cmd/smsdemo uses internal/l1dcache instead) — spec.md is explicit that SMS never
// reimplements the dcache itself, so even this stand-in only needs to be
// behaviorally plausible, not cycle-accurate.
type Fake struct {
	lineSize   uint64
	offsetMask uint64
	procID     uint64
	capacity   int

	resident map[uint64]bool
	order    []uint64
}

// NewFake builds a Fake dcache descriptor for procID with the given line
// size and line capacity.
func NewFake(procID, lineSize uint64, capacity int) *Fake {
	return &Fake{
		lineSize:   lineSize,
		offsetMask: lineSize - 1,
		procID:     procID,
		capacity:   capacity,
		resident:   make(map[uint64]bool, capacity),
	}
}

func (f *Fake) LineSize() uint64   { return f.lineSize }
func (f *Fake) OffsetMask() uint64 { return f.offsetMask }
func (f *Fake) ProcID() uint64     { return f.procID }

// Contains reports whether addr is currently resident — used by tests to
// assert on stream-emitter output, not by SMS itself.
func (f *Fake) Contains(addr uint64) bool { return f.resident[addr] }

// InstallPrefetch installs addr, evicting the oldest resident line (FIFO)
// if the fake dcache is at capacity and addr was not already present.
func (f *Fake) InstallPrefetch(procID, addr uint64) (evictedAddr uint64, evicted bool) {
	if f.resident[addr] {
		return 0, false
	}

	if len(f.order) >= f.capacity {
		evictedAddr = f.order[0]
		f.order = f.order[1:]
		delete(f.resident, evictedAddr)
		evicted = true
	}

	f.resident[addr] = true
	f.order = append(f.order, addr)
	return evictedAddr, evicted
}
