package world

import (
	"github.com/annel0/rootgrove/internal/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultAttackRange — дальность удара игрока
const DefaultAttackRange float32 = 1.0

// fixedDamage — урон от касания и от удара
const fixedDamage = 1

// CollisionSystem превращает начало касания с мягким корнем в урон по нему
type CollisionSystem struct {
	roots *RootStore
	queue *EventQueue[DamageEvent]
}

// NewCollisionSystem создаёт систему касаний
func NewCollisionSystem(roots *RootStore, queue *EventQueue[DamageEvent]) *CollisionSystem {
	return &CollisionSystem{roots: roots, queue: queue}
}

// Handle ставит урон в очередь для каждого CollisionStarted с живым блоком,
// повреждаемым касанием. Порядок сущностей в паре не важен: урон получает
// блок, атакующим считается вторая сторона. Возвращает число событий урона.
func (s *CollisionSystem) Handle(events []physics.CollisionEvent) int {
	n := 0
	for _, ev := range events {
		if ev.Kind != physics.CollisionStarted {
			continue
		}
		if s.touch(ev.B, ev.A) {
			n++
		}
		if s.touch(ev.A, ev.B) {
			n++
		}
	}
	return n
}

func (s *CollisionSystem) touch(target, attacker EntityID) bool {
	block, ok := s.roots.Get(target)
	if !ok || !block.Alive() || !block.MineOnTouch {
		return false
	}
	s.queue.Push(DamageEvent{Target: target, Attacker: attacker, Amount: fixedDamage})
	return true
}

// AttackSystem обрабатывает удар игрока по фронту клавиши атаки
type AttackSystem struct {
	attackRange float32
	roots       *RootStore
	rays        physics.RayCaster
	queue       *EventQueue[DamageEvent]
}

// NewAttackSystem создаёт систему атаки
func NewAttackSystem(attackRange float32, roots *RootStore, rays physics.RayCaster, queue *EventQueue[DamageEvent]) *AttackSystem {
	return &AttackSystem{attackRange: attackRange, roots: roots, rays: rays, queue: queue}
}

// Tick выполняет удар, если атака только что нажата. Луч идёт из позиции
// игрока по направлению взгляда, урон получает первая живая цель.
// Возвращает событие анимации удара, если удар был.
func (s *AttackSystem) Tick(in Input, p *Player) (AnimEvent, bool) {
	if !in.IsJustPressed(KeyAttack) {
		return AnimEvent{}, false
	}
	anim := AnimEvent{Direction: p.LastDirection, Strike: true}

	dir := p.Direction
	if dir.Len() == 0 {
		return anim, true
	}
	s.rays.CastRay(p.Position, dir.Normalize(), s.attackRange, func(entity uint64, _ mgl32.Vec3) bool {
		block, ok := s.roots.Get(entity)
		if !ok || !block.Alive() {
			return true
		}
		s.queue.Push(DamageEvent{Target: entity, Attacker: p.ID, Amount: fixedDamage})
		return false
	})
	return anim, true
}
