package world

import (
	"github.com/annel0/rootgrove/internal/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Параметры движения по умолчанию
const (
	DefaultMoveSpeed   float32 = 30
	DefaultJumpImpulse float32 = 4
	DefaultGroundProbe float32 = 1.0
	DefaultDamping     float32 = 0.01
)

// MovementConfig — параметры движения игрока
type MovementConfig struct {
	Speed       float32
	JumpImpulse float32
	GroundProbe float32 // Длина луча вниз для проверки опоры
}

// DefaultMovementConfig возвращает параметры движения по умолчанию
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		Speed:       DefaultMoveSpeed,
		JumpImpulse: DefaultJumpImpulse,
		GroundProbe: DefaultGroundProbe,
	}
}

// MovementSystem переводит нажатые направления в импульс игрока
type MovementSystem struct {
	cfg  MovementConfig
	rays physics.RayCaster
}

// NewMovementSystem создаёт систему движения
func NewMovementSystem(cfg MovementConfig, rays physics.RayCaster) *MovementSystem {
	return &MovementSystem{cfg: cfg, rays: rays}
}

// Tick записывает импульс движения и прыжка. Ненулевое направление
// становится направлением взгляда. Для строго осевого направления
// возвращается событие анимации ходьбы.
func (s *MovementSystem) Tick(in Input, p *Player, dt float32) (AnimEvent, bool) {
	var dir mgl32.Vec3
	for _, mk := range movementKeys {
		if in.IsPressed(mk.key) {
			dir = dir.Add(mk.dir)
		}
	}
	if dir.Len() > 0 {
		dir = dir.Normalize()
		p.Direction = dir
	}
	p.Impulse = dir.Mul(s.cfg.Speed * dt)

	if in.IsJustPressed(KeyJump) && s.grounded(p) {
		p.Impulse = p.Impulse.Add(mgl32.Vec3{0, s.cfg.JumpImpulse, 0})
	}

	cd, ok := cardinalOf(dir)
	if !ok {
		return AnimEvent{}, false
	}
	p.LastDirection = cd
	return AnimEvent{Direction: cd}, true
}

// grounded проверяет, что под игроком есть другая сущность
func (s *MovementSystem) grounded(p *Player) bool {
	if s.rays == nil {
		return false
	}
	hit := false
	s.rays.CastRay(p.Position, mgl32.Vec3{0, -1, 0}, s.cfg.GroundProbe, func(entity uint64, _ mgl32.Vec3) bool {
		if entity == p.ID {
			return true
		}
		hit = true
		return false
	})
	return hit
}

func cardinalOf(dir mgl32.Vec3) (CardinalDirection, bool) {
	switch dir {
	case mgl32.Vec3{0, 0, -1}:
		return DirUp, true
	case mgl32.Vec3{0, 0, 1}:
		return DirDown, true
	case mgl32.Vec3{-1, 0, 0}:
		return DirLeft, true
	case mgl32.Vec3{1, 0, 0}:
		return DirRight, true
	}
	return 0, false
}
