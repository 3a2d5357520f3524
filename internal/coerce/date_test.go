package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_SpreadsheetSerial(t *testing.T) {
	got, ok := Date("45000")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestDate_SerialOutOfRange(t *testing.T) {
	_, ok := Date("100")
	assert.False(t, ok)

	_, ok = Date("99999")
	assert.False(t, ok)
}

func TestDate_Dotted(t *testing.T) {
	got, ok := Date("31.12.2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), got)
}

func TestDate_DottedWithTime(t *testing.T) {
	got, ok := Date("31.12.2024 14:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 31, 14, 30, 0, 0, time.UTC), got)
}

func TestDate_DottedSingleDigits(t *testing.T) {
	got, ok := Date("5.3.2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestDate_DottedInvalidDay(t *testing.T) {
	_, ok := Date("32.13.2024")
	assert.False(t, ok)
}

func TestDate_Slashed(t *testing.T) {
	got, ok := Date("15/03/2023")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestDate_ISO(t *testing.T) {
	got, ok := Date("2023-03-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), got)

	got, ok = Date("2023-03-15T10:20:30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 10, 20, 30, 0, time.UTC), got)
}

func TestDate_Garbage(t *testing.T) {
	for _, raw := range []string{"", "amanhã", "--", "15th of March"} {
		_, ok := Date(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}
