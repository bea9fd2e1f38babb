package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotToMinutes(t *testing.T) {
	cases := []struct {
		slot string
		want int
	}{
		{"09:00 ص", 9 * 60},
		{"11:45 ص", 11*60 + 45},
		{"12:00 م", 12 * 60},
		{"12:45 م", 12*60 + 45},
		{"01:00 م", 13 * 60},
		{"08:45 م", 20*60 + 45},
		{"12:00 ص", 0},
	}
	for _, tc := range cases {
		got, err := SlotToMinutes(tc.slot)
		require.NoError(t, err, tc.slot)
		assert.Equal(t, tc.want, got, tc.slot)
	}
}

func TestSlotToMinutesMalformed(t *testing.T) {
	for _, slot := range []string{"", "10:00", "10:00 x", "10 ص", "ab:cd ص"} {
		_, err := SlotToMinutes(slot)
		assert.Error(t, err, slot)
	}
}

func TestParseWorkingHours(t *testing.T) {
	w, err := ParseWorkingHours("9:00 صباحاً - 9:00 مساءً")
	require.NoError(t, err)
	assert.Equal(t, HourWindow{Start: 9 * 60, End: 21 * 60}, w)

	w, err = ParseWorkingHours("4:00 مساءً - 9:00 مساءً")
	require.NoError(t, err)
	assert.Equal(t, HourWindow{Start: 16 * 60, End: 21 * 60}, w)

	// Short period markers work too.
	w, err = ParseWorkingHours("10:30 ص - 2:15 م")
	require.NoError(t, err)
	assert.Equal(t, HourWindow{Start: 10*60 + 30, End: 14*60 + 15}, w)
}

func TestParseWorkingHoursMalformed(t *testing.T) {
	for _, text := range []string{"", "9:00 صباحاً", "morning to evening", "9:00 - 17:00"} {
		_, err := ParseWorkingHours(text)
		assert.Error(t, err, text)
	}
}

func TestHourWindowContains(t *testing.T) {
	w := HourWindow{Start: 9 * 60, End: 21 * 60}

	assert.True(t, w.Contains(9*60))
	assert.True(t, w.Contains(20*60+45))
	assert.False(t, w.Contains(21*60)) // end is exclusive
	assert.False(t, w.Contains(8*60+45))
}

func TestIsFriday(t *testing.T) {
	assert.True(t, IsFriday("2026-03-06"))
	assert.False(t, IsFriday("2026-03-05"))
	assert.False(t, IsFriday("not-a-date"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ahmed ali", NormalizeName("  Ahmed Ali  "))
	// Internal whitespace survives plain normalization.
	assert.Equal(t, "ahmed  ali", NormalizeName("Ahmed  Ali"))
}

func TestCollapseName(t *testing.T) {
	assert.Equal(t, "ahmed ali", CollapseName("  Ahmed   Ali "))
	assert.Equal(t, CollapseName("Ahmed Ali"), CollapseName("ahmed    ali"))
	assert.NotEqual(t, NormalizeName("Ahmed  Ali"), CollapseName("Ahmed  Ali"))
}
