package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CardinalDirection — направление взгляда игрока для спрайтов
type CardinalDirection uint8

const (
	DirUp CardinalDirection = iota
	DirDown
	DirLeft
	DirRight
)

func (d CardinalDirection) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Player — актор, добывающий ресурсы. Счётчики меняются только при начислении добычи.
type Player struct {
	ID            EntityID
	Sap           int
	Bark          int
	Wood          int
	Direction     mgl32.Vec3 // Направление взгляда, используется для атаки
	LastDirection CardinalDirection
	StrikeTimer   float32
	Sprite        string
	Position      mgl32.Vec3
	Velocity      mgl32.Vec3
	Impulse       mgl32.Vec3 // Импульс, записанный системой движения в этом тике
}

// NewPlayer создаёт игрока, смотрящего вверх (по -Z)
func NewPlayer(id EntityID, pos mgl32.Vec3) *Player {
	return &Player{
		ID:            id,
		Direction:     mgl32.Vec3{0, 0, -1},
		LastDirection: DirUp,
		Sprite:        WalkSprite(DirUp),
		Position:      pos,
	}
}

// Credit начисляет добычу в счётчик вида ресурса
func (p *Player) Credit(kind ResourceKind, amount int) {
	if amount <= 0 {
		return
	}
	switch kind {
	case ResourceSap:
		p.Sap += amount
	case ResourceBark:
		p.Bark += amount
	case ResourceWood:
		p.Wood += amount
	}
}

// Counter возвращает счётчик вида ресурса
func (p *Player) Counter(kind ResourceKind) int {
	switch kind {
	case ResourceSap:
		return p.Sap
	case ResourceBark:
		return p.Bark
	case ResourceWood:
		return p.Wood
	}
	return 0
}

// Players — реестр игроков по идентификатору сущности
type Players map[EntityID]*Player

// Add добавляет игрока
func (ps Players) Add(p *Player) {
	ps[p.ID] = p
}
