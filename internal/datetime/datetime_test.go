package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15.01.2024", "15.01.2024"},
		{" 5.1.2024 ", "05.01.2024"},
		{"05/01/24", "05.01.2024"},
		{"05-01-2024", "05.01.2024"},
		{"15.01.2024 10:30", "15.01.2024"},
		{"2024-01-15", "15.01.2024"},
		{"2024-01-15T08:00:00", "15.01.2024"},
		{"7.3", "07.03.2025"},
		{"07/03", "07.03.2025"},
		{"31.04.2024", "31.04.2024"}, // April has 30 days: kept verbatim
		{"30.02", "30.02"},
		{"2024-13-01", "2024-13-01"},
		{"unknown", "unknown"},
		{"  ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDate(tc.in, ref))
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	d := time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, time.December, 31, 0, 0, 0, 0, time.UTC)
	for ; !d.After(end); d = d.AddDate(0, 0, 7) {
		text := d.Format(DateLayout)
		parsed, ok := ParseDate(text, ref)
		require.True(t, ok, text)
		assert.Equal(t, text, parsed.String())
	}
}

func TestParseTime(t *testing.T) {
	c, ok := ParseTime("09:05")
	require.True(t, ok)
	assert.Equal(t, "09:05", c.String())

	_, ok = ParseTime("9:5")
	assert.False(t, ok)
	assert.Equal(t, "9:5", NormalizeTime("9:5"))

	assert.Equal(t, "09:30", NormalizeTime("9:30"))
	assert.Equal(t, "10:15", NormalizeTime("поступил в 10:15 утром"))
	assert.Equal(t, "10:30", NormalizeTime("15.01.2024 10:30"))
	assert.Equal(t, "08:45", NormalizeTime("0845"))
	assert.Equal(t, "845", NormalizeTime("845"))
	assert.Equal(t, "", NormalizeTime(""))
}

func TestCombine(t *testing.T) {
	got, ok := Combine("01.01.2024", "10:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), got)

	got, ok = Combine("01.01.2024", "")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)

	// unreadable time falls back to midnight
	got, ok = Combine("01.01.2024", "noon")
	require.True(t, ok)
	assert.Equal(t, 0, got.Hour())

	_, ok = Combine("", "10:00")
	assert.False(t, ok)
	_, ok = Combine("2024-01-01", "10:00")
	assert.False(t, ok)
	_, ok = Combine("31.04.2024", "10:00")
	assert.False(t, ok)
}

func TestParseInstant(t *testing.T) {
	got, ok := ParseInstant("01.02.2024 09:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), got)

	got, ok = ParseInstant(" 01.02.2024 ")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "01.02.2024 later", "01.02.2024 09:00 extra", "tomorrow", "01.02.2024 25:00"} {
		_, ok := ParseInstant(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseReference(t *testing.T) {
	now := time.Date(2025, 5, 5, 5, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ParseReference("01.06.2024 00:00", now))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ParseReference("01.06.2024", now))
	assert.Equal(t, now, ParseReference("garbage", now))
	assert.Equal(t, now, ParseReference("", now))
	assert.Equal(t, "01.06.2024 00:00", FormatInstant(ParseReference("01.06.2024", now)))
}

func TestWall(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*3600)
	instant := time.Date(2024, 1, 1, 20, 30, 0, 0, time.UTC)
	got := Wall(instant, tashkent)
	assert.Equal(t, time.Date(2024, 1, 2, 1, 30, 0, 0, time.UTC), got)
}
