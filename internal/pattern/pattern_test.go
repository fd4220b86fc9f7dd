package pattern

import "testing"

func defaultLayout() Layout {
	return Layout{RegionSize: 2048, LineSize: 64}
}

// P4 (codec round-trip): the unique line address in
// line_addresses(region_base(A), pattern_of(A)) equals A & ~(L-1).
func TestRoundTrip(t *testing.T) {
	l := defaultLayout()
	addrs := []uint64{0x1000, 0x1040, 0x1008, 0x17c0}
	for _, a := range addrs {
		p, overflow := l.PatternOf(a)
		if overflow {
			t.Fatalf("unexpected overflow for addr %#x", a)
		}
		base := l.RegionBase(a)
		lines := l.LineAddresses(base, p)
		if len(lines) != 1 {
			t.Fatalf("addr %#x: expected exactly one line address, got %v", a, lines)
		}
		want := a &^ (l.LineSize - 1)
		if lines[0] != want {
			t.Fatalf("addr %#x: got line %#x, want %#x", a, lines[0], want)
		}
	}
}

// pattern_of(A) | pattern_of(B) == pattern_of(B) iff A and B lie in the same line.
func TestSameLineEquivalence(t *testing.T) {
	l := defaultLayout()
	a, b := uint64(0x1000), uint64(0x1008) // same 64B line
	pa, _ := l.PatternOf(a)
	pb, _ := l.PatternOf(b)
	if !SameLine(pa, pb) {
		t.Fatalf("expected %#x and %#x (same line) to merge as equal", a, b)
	}

	c := uint64(0x1040) // different line, same region
	pc, _ := l.PatternOf(c)
	if SameLine(pa, pc) {
		t.Fatalf("expected %#x and %#x (different lines) not to merge as equal", a, c)
	}
}

func TestPatternOfBitIndex(t *testing.T) {
	l := defaultLayout()
	p, overflow := l.PatternOf(0x1080)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if p != (1 << 2) {
		t.Fatalf("got pattern %#x, want bit 2 set", p)
	}
}

func TestLinesWidth(t *testing.T) {
	l := defaultLayout()
	if got := l.Lines(); got != 32 {
		t.Fatalf("B = R/L = 2048/64 = 32, got %d", got)
	}
}

func TestFingerprintModes(t *testing.T) {
	l := defaultLayout()
	a := uint64(0x1040)
	pc := uint64(0xdead0000)

	gotBase := l.Fingerprint(ModeRegionBase, pc, a)
	if gotBase != l.RegionBase(a) {
		t.Fatalf("ModeRegionBase: got %#x, want %#x", gotBase, l.RegionBase(a))
	}

	gotPC := l.Fingerprint(ModePCPlusOffset, pc, a)
	want := pc + l.RegionOffset(a)
	if gotPC != want {
		t.Fatalf("ModePCPlusOffset: got %#x, want %#x", gotPC, want)
	}
}

func TestLineAddressesAscendingOrder(t *testing.T) {
	l := defaultLayout()
	p := Bitmap(0b1011) // lines 0, 1, 3
	base := uint64(0x2000)
	got := l.LineAddresses(base, p)
	want := []uint64{base, base + 64, base + 3*64}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestOverflowBeyondWidth(t *testing.T) {
	// With a conforming layout (B <= 64) an offset below RegionSize always
	// yields an index below B, so overflow instead models B > 64 misuse
	// guarded upstream. Exercise the guard directly via a synthetic layout:
	// B = 2^20, and offset 100 within the region is line index 100, past
	// the 64-bit bitmap.
	wide := Layout{RegionSize: 1 << 20, LineSize: 1}
	_, overflow := wide.PatternOf(uint64(1)<<30 | 100)
	if !overflow {
		t.Fatal("expected overflow for out-of-range line index")
	}
}
