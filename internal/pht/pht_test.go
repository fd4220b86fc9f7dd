package pht

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camsterrrr/scarab-sms/internal/pattern"
)

func TestRecordThenPredictRoundTrip(t *testing.T) {
	p := New(8, 1, nil)
	p.Record(0x100, pattern.Bitmap(0b111))

	merged, found := p.Predict(0x100)
	require.True(t, found)
	require.Equal(t, pattern.Bitmap(0b111), merged)
}

func TestPredictMissReturnsZero(t *testing.T) {
	p := New(8, 1, nil)
	merged, found := p.Predict(0xdead)
	require.False(t, found)
	require.Equal(t, pattern.Bitmap(0), merged)
}

// Predict ORs together every matching way in K's set (spec.md §4.5);
// LookupMerged implements this generally even though this table's own
// Insert dedupes on tag match before any duplicate can form, so a
// single recorded entry is the common case exercised here.
func TestPredictReturnsRecordedPattern(t *testing.T) {
	p := New(4, 1, nil) // 4-way fully associative

	p.Record(0x100, pattern.Bitmap(0b01))
	merged, found := p.Predict(0x100)
	require.True(t, found)
	require.Equal(t, pattern.Bitmap(0b01), merged)
}

func TestRecordOverwritesSameTag(t *testing.T) {
	p := New(8, 1, nil)
	p.Record(0x100, pattern.Bitmap(0b01))
	p.Record(0x100, pattern.Bitmap(0b10))

	merged, found := p.Predict(0x100)
	require.True(t, found)
	require.Equal(t, pattern.Bitmap(0b10), merged)
}
