package vec

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 представляет точку целочисленной решётки мира (x, y, z).
// Тип сравним и используется напрямую как ключ map: равенство и хеш точные.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Up и Down — единичные шаги по вертикали
var (
	Up   = Vec3{X: 0, Y: 1, Z: 0}
	Down = Vec3{X: 0, Y: -1, Z: 0}
)

// New создаёт вектор из трёх координат
func New(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add складывает два вектора покомпонентно
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор покомпонентно
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Neg возвращает противоположный вектор
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// SetX устанавливает координату X
func (v *Vec3) SetX(x int) { v.X = x }

// SetY устанавливает координату Y
func (v *Vec3) SetY(y int) { v.Y = y }

// SetZ устанавливает координату Z
func (v *Vec3) SetZ(z int) { v.Z = z }

// Above возвращает клетку непосредственно над текущей
func (v Vec3) Above() Vec3 {
	return v.Add(Up)
}

// Below возвращает клетку непосредственно под текущей
func (v Vec3) Below() Vec3 {
	return v.Add(Down)
}

// AddXZ смещает точку в горизонтальной плоскости
func (v Vec3) AddXZ(offset Vec2) Vec3 {
	return Vec3{X: v.X + offset.X, Y: v.Y, Z: v.Z + offset.Y}
}

// DistanceTo возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return float64(dx*dx + dy*dy + dz*dz)
}

// ToWorld переводит точку решётки в мировые координаты движка.
// Используется только на границе с движком.
func (v Vec3) ToWorld() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FromWorld возвращает клетку решётки, содержащую мировую точку
// (центры клеток совпадают с целыми координатами).
func FromWorld(p mgl32.Vec3) Vec3 {
	return Vec3{X: roundToInt(p[0]), Y: roundToInt(p[1]), Z: roundToInt(p[2])}
}

func roundToInt(f float32) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}

// String реализует fmt.Stringer для диагностики
func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
