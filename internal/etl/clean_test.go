package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanISBN(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"0-345-40288-1", "0345402881", true},
		{" 978 0 345 40288 9 ", "9780345402889", true},
		{"0345402881", "0345402881", true},
		{"034540288X", "", false},
		{"12345", "", false},
		{"12345678901", "", false},
		{"", "", false},
		{"--", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanISBN(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYear(t *testing.T) {
	y, ok := ParseYear("1999")
	assert.True(t, ok)
	assert.Equal(t, 1999, y)

	y, ok = ParseYear(" 2002.0 ")
	assert.True(t, ok)
	assert.Equal(t, 2002, y)

	_, ok = ParseYear("DK Publishing Inc")
	assert.False(t, ok)
	_, ok = ParseYear("")
	assert.False(t, ok)
}

func TestCleanLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"NYC, New York, USA", "nyc, new york, usa", true},
		{"stockton,california , usa", "stockton, california, usa", true},
		{"porto, , portugal", "porto, portugal", true},
		{"timmins, ", "", false},
		{"N/A", "", false},
		{"null", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanLocation(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBirthYear(t *testing.T) {
	y, ok := BirthYear(30, 2024, 6, 120)
	assert.True(t, ok)
	assert.Equal(t, 1994, y)

	_, ok = BirthYear(5, 2024, 6, 120)
	assert.False(t, ok)
	_, ok = BirthYear(200, 2024, 6, 120)
	assert.False(t, ok)

	y, ok = BirthYear(120, 2024, 6, 120)
	assert.True(t, ok)
	assert.Equal(t, 1904, y)
}
