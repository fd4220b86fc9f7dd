package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camsterrrr/scarab-sms/internal/pattern"
)

func TestAccessInsertsOnFirstTouch(t *testing.T) {
	ft := New(4, nil)

	outcome, merged := ft.Access(0x100, pattern.Bitmap(0b1))
	require.Equal(t, Inserted, outcome)
	require.Equal(t, pattern.Bitmap(0b1), merged)
	require.True(t, ft.Contains(0x100))
}

func TestAccessRetainsSameLine(t *testing.T) {
	ft := New(4, nil)
	ft.Access(0x100, pattern.Bitmap(0b1))

	outcome, merged := ft.Access(0x100, pattern.Bitmap(0b1))
	require.Equal(t, Retained, outcome)
	require.Equal(t, pattern.Bitmap(0b1), merged)

	v, ok := ft.Peek(0x100)
	require.True(t, ok)
	require.Equal(t, pattern.Bitmap(0b1), v)
}

func TestAccessPromotesOnSecondDistinctLine(t *testing.T) {
	ft := New(4, nil)
	ft.Access(0x100, pattern.Bitmap(0b1))

	outcome, merged := ft.Access(0x100, pattern.Bitmap(0b10))
	require.Equal(t, Promoted, outcome)
	require.Equal(t, pattern.Bitmap(0b11), merged)

	// The FT slot must already be invalidated: the caller moves the
	// merged pattern into the Accumulation Table itself.
	require.False(t, ft.Contains(0x100))
}

func TestInvalidateDropsStagedEntry(t *testing.T) {
	ft := New(4, nil)
	ft.Access(0x200, pattern.Bitmap(0b1))
	ft.Invalidate(0x200)
	require.False(t, ft.Contains(0x200))
}
