package l1dcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemandAccessMissThenHit(t *testing.T) {
	c := New(0, 64, 4, 4) // fully associative, 4 lines

	_, evicted := c.DemandAccess(0x1000)
	require.False(t, evicted)
	require.True(t, c.Contains(0x1000))

	_, evicted = c.DemandAccess(0x1000)
	require.False(t, evicted)
}

func TestDemandAccessEvictsWhenFull(t *testing.T) {
	c := New(0, 64, 1, 1) // one line total

	_, evicted := c.DemandAccess(0x1000)
	require.False(t, evicted)

	evictedAddr, evicted := c.DemandAccess(0x2000)
	require.True(t, evicted)
	require.Equal(t, uint64(0x1000), evictedAddr)
	require.True(t, c.Contains(0x2000))
	require.False(t, c.Contains(0x1000))
}

func TestInstallPrefetchSkipsAlreadyResidentLine(t *testing.T) {
	c := New(0, 64, 4, 4)
	c.DemandAccess(0x1000)

	_, evicted := c.InstallPrefetch(0, 0x1000)
	require.False(t, evicted)
}

func TestInstallPrefetchInstallsNewLine(t *testing.T) {
	c := New(0, 64, 4, 4)

	_, evicted := c.InstallPrefetch(0, 0x1000)
	require.False(t, evicted)
	require.True(t, c.Contains(0x1000))
}

func TestReadWriteLineRoundTrip(t *testing.T) {
	c := New(0, 64, 4, 4)
	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i)
	}

	c.WriteLine(0x1000, payload)
	require.Equal(t, payload, c.ReadLine(0x1000))
}

func TestLineSizeAndOffsetMask(t *testing.T) {
	c := New(0, 64, 4, 4)
	require.Equal(t, uint64(64), c.LineSize())
	require.Equal(t, uint64(63), c.OffsetMask())
	require.Equal(t, uint64(0), c.ProcID())
}
