package probing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerOfTwoExponent(t *testing.T) {
	tests := []struct {
		x    int
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {4096, 12}, {4097, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PowerOfTwoExponent(tt.x), "x=%d", tt.x)
	}
}

func TestPrimeCapacity(t *testing.T) {
	tests := []struct {
		name string
		x    int
		want int
	}{
		{"negative request", -3, 7},
		{"zero request", 0, 7},
		{"below minimum", 4, 7},
		{"minimum moves to next class", 7, 11},
		{"power of two", 8, 11},
		{"just above power of two", 9, 17},
		{"4096", 4096, 4099},
		{"4101", 4101, 8209},
		{"beyond table clamps", 1 << 40, 2147483659},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrimeCapacity(tt.x))
		})
	}
}

func TestShrinkTarget(t *testing.T) {
	assert.Equal(t, 4, ShrinkTarget(11))
	assert.Equal(t, 8, ShrinkTarget(17))
	assert.Equal(t, 16, ShrinkTarget(37))
	assert.Equal(t, 2048, ShrinkTarget(4099))
	assert.Equal(t, 0, ShrinkTarget(2))

	// normalized targets never drop under the minimum
	assert.Equal(t, MinCapacity, PrimeCapacity(ShrinkTarget(11)))
	assert.Equal(t, 17, PrimeCapacity(ShrinkTarget(37)))
}
