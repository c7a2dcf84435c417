package vec

import "math"

// Vec2 представляет смещение в горизонтальной плоскости (X, Z мира)
type Vec2 struct {
	X, Y int
}

// HorizontalNeighbors — восемь соседей клетки в плоскости XZ без центра.
// Порядок фиксирован: внешний цикл по X от -1 до 1, внутренний по Z.
var HorizontalNeighbors = []Vec2{
	{X: -1, Y: -1}, {X: -1, Y: 0}, {X: -1, Y: 1},
	{X: 0, Y: -1}, {X: 0, Y: 1},
	{X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
