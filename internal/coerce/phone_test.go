package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone_StripsFormatting(t *testing.T) {
	clean, ok := Phone("(61) 99999-0000")
	require.True(t, ok)
	assert.Equal(t, "61999990000", clean)
}

func TestPhone_TooShort(t *testing.T) {
	_, ok := Phone("1234567")
	assert.False(t, ok)

	_, ok = Phone("ramal 42")
	assert.False(t, ok)
}

func TestPhone_AllZeros(t *testing.T) {
	_, ok := Phone("0000000000")
	assert.False(t, ok)
}

func TestPhoneVariations_WithCountryCode(t *testing.T) {
	got := PhoneVariations("5561999990000")
	assert.Contains(t, got, "5561999990000")
	assert.Contains(t, got, "61999990000")
}

func TestPhoneVariations_WithoutCountryCode(t *testing.T) {
	got := PhoneVariations("61999990000")
	assert.Contains(t, got, "61999990000")
	assert.Contains(t, got, "5561999990000")
}

func TestPhoneVariations_ShortNumberStartingWith55(t *testing.T) {
	// A local number that merely starts with 55 keeps its digits.
	got := PhoneVariations("55412345")
	assert.Equal(t, []string{"55412345"}, got)
}
