package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoise_Range(t *testing.T) {
	n := NewNoise(42, 0.1)
	for x := -20; x <= 20; x++ {
		for y := -20; y <= 20; y++ {
			v := n.Sample2D(float64(x), float64(y))
			assert.GreaterOrEqual(t, v, 0.0, "шум не должен быть меньше 0")
			assert.LessOrEqual(t, v, 1.0, "шум не должен быть больше 1")
		}
	}
}

func TestNoise_Deterministic(t *testing.T) {
	a := NewNoise(7, 0.05)
	b := NewNoise(7, 0.05)
	assert.Equal(t, a.Sample2D(3.5, -1.25), b.Sample2D(3.5, -1.25), "одинаковый сид даёт одинаковый шум")
	assert.Equal(t, int64(7), a.Seed())
}

func TestNoise_DefaultScale(t *testing.T) {
	n := NewNoise(1, 0)
	assert.Equal(t, 1.0, n.scale, "неположительный масштаб заменяется на 1")
}
