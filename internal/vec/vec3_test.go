package vec

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := New(1, -2, 3)
	b := New(4, 5, -6)

	assert.Equal(t, New(5, 3, -3), a.Add(b), "Сложение должно быть покомпонентным")
	assert.Equal(t, New(-3, -7, 9), a.Sub(b), "Вычитание должно быть покомпонентным")
	assert.Equal(t, New(-1, 2, -3), a.Neg(), "Отрицание должно менять знак всех компонент")
	assert.True(t, a.Add(b).Sub(b).Equals(a))
}

func TestVec3_Setters(t *testing.T) {
	v := New(0, 0, 0)
	v.SetX(7)
	v.SetY(-1)
	v.SetZ(3)
	assert.Equal(t, New(7, -1, 3), v)
}

func TestVec3_MapKey(t *testing.T) {
	m := map[Vec3]int{}
	m[New(1, 2, 3)] = 1
	m[New(1, 2, 3)] = 2
	m[New(3, 2, 1)] = 3

	assert.Len(t, m, 2, "Одинаковые координаты должны давать один ключ")
	assert.Equal(t, 2, m[New(1, 2, 3)])
}

func TestVec3_Neighbours(t *testing.T) {
	origin := New(0, 4, 0)
	assert.Equal(t, New(0, 5, 0), origin.Above())
	assert.Equal(t, New(0, 3, 0), origin.Below())

	seen := map[Vec3]struct{}{}
	for _, off := range HorizontalNeighbors {
		n := origin.AddXZ(off)
		assert.Equal(t, 4, n.Y, "Соседи должны лежать в той же плоскости")
		assert.False(t, n.Equals(origin), "Центр не должен входить в соседей")
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 8)
	assert.Equal(t, Vec2{X: -1, Y: -1}, HorizontalNeighbors[0])
	assert.Equal(t, Vec2{X: 1, Y: 1}, HorizontalNeighbors[7])
}

func TestVec3_WorldConversion(t *testing.T) {
	v := New(-3, 0, 12)
	assert.Equal(t, mgl32.Vec3{-3, 0, 12}, v.ToWorld())
	assert.Equal(t, v, FromWorld(mgl32.Vec3{-3.2, 0.4, 11.6}))
	assert.Equal(t, New(0, -1, 0), FromWorld(mgl32.Vec3{0, -0.6, 0.49}))
}
