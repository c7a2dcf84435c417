package world

import (
	"context"
	"sync"

	"github.com/annel0/rootgrove/internal/logging"
)

// EventQueue — очередь событий тика. События вычитываются целиком
// в порядке поступления, без приоритетов и без дедупликации.
type EventQueue[T any] struct {
	mu     sync.Mutex
	events []T
}

// Push добавляет событие в конец очереди
func (q *EventQueue[T]) Push(ev T) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain забирает все накопленные события
func (q *EventQueue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Len возвращает число событий в очереди
func (q *EventQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// DamageEvent — запрос на урон по сущности
type DamageEvent struct {
	Target   EntityID
	Attacker EntityID
	Amount   int
}

// Shake — интенсивность тряски камеры, которую поднимают удары
type Shake interface {
	AddShake(amount float32)
}

// DamageConfig — величины обратной связи при уроне
type DamageConfig struct {
	HitShake     float32 // На каждый удар
	DestroyShake float32 // Дополнительно при разрушении
}

// DefaultDamageConfig: 0.02 за удар, 0.1 за разрушение
func DefaultDamageConfig() DamageConfig {
	return DamageConfig{HitShake: 0.02, DestroyShake: 0.1}
}

// DamageSystem применяет накопленный урон: уменьшает здоровье, убирает
// разрушенные блоки из карты и движка, начисляет добычу атакующему.
type DamageSystem struct {
	cfg       DamageConfig
	queue     *EventQueue[DamageEvent]
	blocks    *BlockMap
	roots     *RootStore
	players   Players
	despawner Despawner
	shake     Shake
	events    *EventPublisher
	metrics   *Metrics
	logger    *logging.Logger
}

// NewDamageSystem создаёт систему урона
func NewDamageSystem(cfg DamageConfig, queue *EventQueue[DamageEvent], blocks *BlockMap, roots *RootStore,
	players Players, despawner Despawner, shake Shake, events *EventPublisher, metrics *Metrics) *DamageSystem {
	return &DamageSystem{
		cfg:       cfg,
		queue:     queue,
		blocks:    blocks,
		roots:     roots,
		players:   players,
		despawner: despawner,
		shake:     shake,
		events:    events,
		metrics:   metrics,
		logger:    logging.GetWorldLogger(),
	}
}

// DamageResult — итог применения очереди за тик
type DamageResult struct {
	Applied   int
	Ignored   int
	Destroyed []EntityID
}

// Tick вычитывает очередь и применяет события по порядку.
// Урон по отсутствующей или уже разрушенной цели ничего не делает.
func (s *DamageSystem) Tick(ctx context.Context, tick uint64) DamageResult {
	var res DamageResult
	for _, ev := range s.queue.Drain() {
		block, ok := s.roots.Get(ev.Target)
		if !ok || !block.Alive() {
			res.Ignored++
			continue
		}
		res.Applied++
		s.metrics.Damage()

		destroyed := block.ApplyDamage(ev.Amount)
		s.addShake(s.cfg.HitShake)
		s.events.Publish(ctx, BlockEvent{
			Type:     EventBlockDamaged,
			Tick:     tick,
			Block:    block.ID,
			Attacker: ev.Attacker,
			Resource: block.Resource,
			Health:   block.Health,
			Position: [3]int{block.Position.X, block.Position.Y, block.Position.Z},
		})

		if destroyed {
			s.destroy(ctx, tick, block, ev.Attacker)
			res.Destroyed = append(res.Destroyed, block.ID)
		}
	}
	return res
}

// destroy убирает блок из карты и движка и начисляет добычу
func (s *DamageSystem) destroy(ctx context.Context, tick uint64, block *RootBlock, attacker EntityID) {
	if id, ok := s.blocks.Get(block.Position); ok && id == block.ID {
		s.blocks.Remove(block.Position)
	} else {
		s.logger.Warn("разрушенный блок %d не найден в карте по адресу %v", block.ID, block.Position)
		s.metrics.InvariantViolation("destroyed_not_indexed")
	}
	s.roots.Remove(block.ID)
	if s.despawner != nil {
		s.despawner.Despawn(block.ID)
	}
	s.addShake(s.cfg.DestroyShake)
	s.metrics.BlockDestroyed(block.Resource)

	yield := block.Collect()
	if p, ok := s.players[attacker]; ok {
		p.Credit(block.Resource, yield)
	}

	s.events.Publish(ctx, BlockEvent{
		Type:     EventBlockDestroyed,
		Tick:     tick,
		Block:    block.ID,
		Attacker: attacker,
		Resource: block.Resource,
		Health:   block.Health,
		Yield:    yield,
		Position: [3]int{block.Position.X, block.Position.Y, block.Position.Z},
	})
	s.logger.Debug("блок %d (%s) разрушен, добыча %d", block.ID, block.Resource, yield)
}

func (s *DamageSystem) addShake(amount float32) {
	if s.shake != nil {
		s.shake.AddShake(amount)
	}
}
