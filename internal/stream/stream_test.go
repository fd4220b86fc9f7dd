package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camsterrrr/scarab-sms/internal/pattern"
)

type fakeInstaller struct {
	installed []uint64
	evictOn   map[uint64]uint64 // addr -> evicted addr, if eviction should be reported
}

func (f *fakeInstaller) InstallPrefetch(procID, addr uint64) (uint64, bool) {
	f.installed = append(f.installed, addr)
	ev, ok := f.evictOn[addr]
	return ev, ok
}

func testLayout() pattern.Layout {
	return pattern.Layout{RegionSize: 256, LineSize: 64}
}

func TestEmitSkipsTriggerLine(t *testing.T) {
	inst := &fakeInstaller{}
	layout := testLayout()

	Emit(inst, layout, 0, 0x1000, 0x1000, pattern.Bitmap(0b0001))
	require.Empty(t, inst.installed)
}

func TestEmitInstallsOtherPredictedLines(t *testing.T) {
	inst := &fakeInstaller{}
	layout := testLayout()

	// Region base 0x1000, trigger on line 0 (0x1000); predicted bitmap
	// names lines 0, 1, 2 (0x1000, 0x1040, 0x1080).
	Emit(inst, layout, 0, 0x1000, 0x1000, pattern.Bitmap(0b0111))
	require.Equal(t, []uint64{0x1040, 0x1080}, inst.installed)
}

func TestEmitReportsHostEvictions(t *testing.T) {
	inst := &fakeInstaller{evictOn: map[uint64]uint64{0x1040: 0x9000}}
	layout := testLayout()

	evictions := Emit(inst, layout, 0, 0x1000, 0x1000, pattern.Bitmap(0b0011))
	require.Equal(t, []Eviction{{Addr: 0x9000}}, evictions)
}

func TestEmitNothingOnEmptyPattern(t *testing.T) {
	inst := &fakeInstaller{}
	layout := testLayout()

	evictions := Emit(inst, layout, 0, 0x1000, 0x1000, pattern.Bitmap(0))
	require.Empty(t, inst.installed)
	require.Empty(t, evictions)
}
