package util

import (
	"github.com/aquilax/go-perlin"
)

// Noise — генератор двумерного шума Перлина со своим сидом
type Noise struct {
	perlin *perlin.Perlin
	seed   int64
	scale  float64
}

// NewNoise создаёт генератор шума. scale масштабирует входные координаты.
func NewNoise(seed int64, scale float64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	if scale <= 0 {
		scale = 1
	}
	return &Noise{
		perlin: perlin.NewPerlin(alpha, beta, n, seed),
		seed:   seed,
		scale:  scale,
	}
}

// Seed возвращает сид генератора
func (n *Noise) Seed() int64 {
	return n.seed
}

// Sample2D возвращает значение шума в точке (от 0 до 1)
func (n *Noise) Sample2D(x, y float64) float64 {
	v := (n.perlin.Noise2D(x*n.scale, y*n.scale) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
