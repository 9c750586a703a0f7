package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1999", 1999, false},
		{" 42 ", 42, false},
		{"1999.0", 1999, false},
		{"-3", -3, false},
		{"1999.5", 0, true},
		{"", 0, true},
		{"NULL", 0, true},
		{"NaN", 0, true},
		{"1e20", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertToInt64(t *testing.T) {
	n, err := ConvertToInt64([]byte("17"))
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	n, err = ConvertToInt64(int32(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = ConvertToInt64(struct{}{})
	assert.Error(t, err)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, Nullable[int](nil))
	assert.Equal(t, 7, Nullable(Ptr(7)))
	assert.Equal(t, "x", Nullable(Ptr("x")))
}

func TestNormalizeISBNKeepsOtherCharacters(t *testing.T) {
	assert.Equal(t, "034540288X", NormalizeISBN(" 0-345 40288-X "))
}
