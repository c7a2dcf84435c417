package physics

import (
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind определяет форму коллайдера
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota // Параллелепипед, задаётся половинами размеров
	ShapeBall                    // Шар, задаётся радиусом
)

// Collider описывает форму коллайдера, объявляемую движку.
// Разрешение столкновений выполняет физический движок.
type Collider struct {
	Shape       ShapeKind
	HalfExtents mgl32.Vec3 // Для ShapeCuboid
	Radius      float32    // Для ShapeBall
	// ActiveEvents включает доставку событий начала столкновения
	ActiveEvents bool
}

// NewCuboid создаёт коллайдер-параллелепипед с указанными половинами размеров
func NewCuboid(hx, hy, hz float32) Collider {
	return Collider{Shape: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

// NewBall создаёт шаровой коллайдер
func NewBall(radius float32) Collider {
	return Collider{Shape: ShapeBall, Radius: radius}
}

// WithEvents возвращает копию коллайдера с включённой доставкой событий
func (c Collider) WithEvents() Collider {
	c.ActiveEvents = true
	return c
}

// Contains проверяет, находится ли точка внутри коллайдера с центром center
func (c Collider) Contains(center, point mgl32.Vec3) bool {
	d := point.Sub(center)
	switch c.Shape {
	case ShapeBall:
		return d.Len() <= c.Radius
	default:
		return abs32(d[0]) <= c.HalfExtents[0] &&
			abs32(d[1]) <= c.HalfExtents[1] &&
			abs32(d[2]) <= c.HalfExtents[2]
	}
}

// Overlaps проверяет строгое взаимное проникновение двух коллайдеров.
// Касание по границе контактом не считается.
func Overlaps(a Collider, ca mgl32.Vec3, b Collider, cb mgl32.Vec3) bool {
	switch {
	case a.Shape == ShapeBall && b.Shape == ShapeBall:
		r := a.Radius + b.Radius
		return cb.Sub(ca).Len() < r
	case a.Shape == ShapeBall:
		return ballCuboid(ca, a.Radius, cb, b.HalfExtents)
	case b.Shape == ShapeBall:
		return ballCuboid(cb, b.Radius, ca, a.HalfExtents)
	default:
		d := cb.Sub(ca)
		for i := 0; i < 3; i++ {
			if abs32(d[i]) >= a.HalfExtents[i]+b.HalfExtents[i] {
				return false
			}
		}
		return true
	}
}

// ballCuboid сравнивает радиус с расстоянием до ближайшей точки параллелепипеда
func ballCuboid(ball mgl32.Vec3, radius float32, box, half mgl32.Vec3) bool {
	var closest mgl32.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = mgl32.Clamp(ball[i], box[i]-half[i], box[i]+half[i])
	}
	return closest.Sub(ball).Len() < radius
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// CollisionKind различает начало и конец контакта
type CollisionKind uint8

const (
	CollisionStarted CollisionKind = iota
	CollisionStopped
)

// CollisionEvent — событие контакта двух сущностей от физического движка
type CollisionEvent struct {
	Kind CollisionKind
	A    uint64
	B    uint64
}

// RayHitFunc вызывается для каждой сущности на луче в порядке удаления.
// Возврат true продолжает поиск, false — останавливает.
type RayHitFunc func(entity uint64, point mgl32.Vec3) bool

// RayCaster — запрос пересечений луча у физического движка
type RayCaster interface {
	CastRay(origin, dir mgl32.Vec3, maxDist float32, fn RayHitFunc)
}

// OccupancyFunc сообщает, какая сущность занимает клетку решётки
type OccupancyFunc func(cell vec.Vec3) (uint64, bool)

// GridRayCaster — пошаговый луч по решётке блоков единичного размера.
// Используется в безголовом режиме вместо физического движка.
type GridRayCaster struct {
	Occupancy OccupancyFunc
	Step      float32
	// GroundY и GroundID описывают единственный коллайдер плоскости земли
	GroundY   float32
	GroundID  uint64
	HasGround bool
}

// NewGridRayCaster создаёт луч с шагом 0.05
func NewGridRayCaster(occupancy OccupancyFunc) *GridRayCaster {
	return &GridRayCaster{Occupancy: occupancy, Step: 0.05}
}

// SetGround регистрирует коллайдер земли: всё ниже groundY принадлежит groundID
func (g *GridRayCaster) SetGround(groundY float32, groundID uint64) {
	g.GroundY = groundY
	g.GroundID = groundID
	g.HasGround = true
}

// CastRay реализует RayCaster. Каждая сущность сообщается не более одного раза.
func (g *GridRayCaster) CastRay(origin, dir mgl32.Vec3, maxDist float32, fn RayHitFunc) {
	if dir.Len() == 0 || maxDist <= 0 {
		return
	}
	dir = dir.Normalize()
	step := g.Step
	if step <= 0 {
		step = 0.05
	}

	seen := make(map[uint64]struct{})
	for t := float32(0); t <= maxDist; t += step {
		point := origin.Add(dir.Mul(t))

		if g.Occupancy != nil {
			if id, ok := g.Occupancy(vec.FromWorld(point)); ok {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					if !fn(id, point) {
						return
					}
				}
			}
		}

		if g.HasGround && point[1] <= g.GroundY {
			if _, dup := seen[g.GroundID]; !dup {
				seen[g.GroundID] = struct{}{}
				if !fn(g.GroundID, point) {
					return
				}
			}
		}
	}
}
