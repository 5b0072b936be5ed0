package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, 10.0, FromMinorUnits(1000))
	assert.Equal(t, 25.0, FromMinorUnits(2500))
	assert.Equal(t, 79.9, FromMinorUnits(7990))
	assert.Equal(t, 0.0, FromMinorUnits(0))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "R$ 10,00"},
		{25, "R$ 25,00"},
		{0, "R$ 0,00"},
		{79.9, "R$ 79,90"},
		{1234.5, "R$ 1.234,50"},
		{1000000, "R$ 1.000.000,00"},
		{-10, "-R$ 10,00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormat_Deterministic(t *testing.T) {
	first := Format(FromMinorUnits(1000))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Format(FromMinorUnits(1000)))
	}
}

func TestIsDisplayCurrency(t *testing.T) {
	assert.True(t, IsDisplayCurrency("brl"))
	assert.True(t, IsDisplayCurrency("BRL"))
	assert.False(t, IsDisplayCurrency("usd"))
	assert.False(t, IsDisplayCurrency("nope"))
	assert.False(t, IsDisplayCurrency(""))
}
