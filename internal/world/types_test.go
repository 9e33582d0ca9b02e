package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChebyshevXZ(t *testing.T) {
	tests := []struct {
		name string
		a    Coordinate
		b    Coordinate
		want int
	}{
		{
			name: "same position",
			a:    Coordinate{X: 5, Y: 64, Z: 5},
			b:    Coordinate{X: 5, Y: 64, Z: 5},
			want: 0,
		},
		{
			name: "adjacent diagonal",
			a:    Coordinate{X: 1, Z: 1},
			b:    Coordinate{},
			want: 1,
		},
		{
			name: "x dominates",
			a:    Coordinate{X: 7, Z: 2},
			b:    Coordinate{},
			want: 7,
		},
		{
			name: "z dominates negative",
			a:    Coordinate{X: 1, Z: -9},
			b:    Coordinate{},
			want: 9,
		},
		{
			name: "y is ignored",
			a:    Coordinate{X: 1, Y: 100, Z: 1},
			b:    Coordinate{X: 0, Y: -100, Z: 0},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.ChebyshevXZ(tt.b))
			assert.Equal(t, tt.want, tt.b.ChebyshevXZ(tt.a))
		})
	}
}

func TestOffset(t *testing.T) {
	home := Coordinate{X: 10, Y: 64, Z: -5}

	got := home.Offset(-1, 0, 1)

	assert.Equal(t, Coordinate{X: 9, Y: 64, Z: -4}, got)
	// Original is unchanged
	assert.Equal(t, Coordinate{X: 10, Y: 64, Z: -5}, home)
}
