package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/vec"
)

// EntityID — непрозрачный идентификатор сущности движка
type EntityID = uint64

var (
	// ErrMissingEntry — перемещаемая клетка отсутствует в карте (нарушение инварианта)
	ErrMissingEntry = errors.New("block map: source cell is not occupied")
	// ErrTargetOccupied — целевая клетка перемещения уже занята
	ErrTargetOccupied = errors.New("block map: target cell is occupied")
)

// BlockMap — карта занятости: единственный источник истины о том, занята ли клетка.
// В каждой клетке не более одного блока. Карта принадлежит симуляции и явно
// передаётся генератору, системе обрушения и системе добычи.
type BlockMap struct {
	mu       sync.RWMutex
	entities map[vec.Vec3]EntityID
	metrics  *Metrics
	logger   *logging.Logger
}

// NewBlockMap создаёт пустую карту занятости
func NewBlockMap() *BlockMap {
	return &BlockMap{
		entities: make(map[vec.Vec3]EntityID),
		logger:   logging.GetWorldLogger(),
	}
}

// SetMetrics подключает метрики Prometheus
func (bm *BlockMap) SetMetrics(m *Metrics) {
	bm.mu.Lock()
	bm.metrics = m
	bm.mu.Unlock()
	m.SetOccupancy(bm.Len())
}

// Contains проверяет, занята ли клетка
func (bm *BlockMap) Contains(pos vec.Vec3) bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	_, ok := bm.entities[pos]
	return ok
}

// Get возвращает сущность в клетке
func (bm *BlockMap) Get(pos vec.Vec3) (EntityID, bool) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	id, ok := bm.entities[pos]
	return id, ok
}

// Insert безусловно записывает сущность в клетку.
// Вызывающий обязан предварительно проверить Contains.
func (bm *BlockMap) Insert(pos vec.Vec3, id EntityID) {
	bm.mu.Lock()
	bm.entities[pos] = id
	n, m := len(bm.entities), bm.metrics
	bm.mu.Unlock()
	m.SetOccupancy(n)
}

// Remove удаляет клетку из карты и возвращает сущность, если она была
func (bm *BlockMap) Remove(pos vec.Vec3) (EntityID, bool) {
	bm.mu.Lock()
	id, ok := bm.entities[pos]
	if ok {
		delete(bm.entities, pos)
	}
	n, m := len(bm.entities), bm.metrics
	bm.mu.Unlock()

	if ok {
		m.SetOccupancy(n)
	}
	return id, ok
}

// Relocate атомарно переносит запись из old в new.
// Отсутствие old — нарушение инварианта: карта не меняется, диагностика
// пишется в лог, возвращается ErrMissingEntry. Паники нет.
func (bm *BlockMap) Relocate(old, new vec.Vec3) error {
	if old == new {
		return nil
	}

	bm.mu.Lock()
	m := bm.metrics
	id, ok := bm.entities[old]
	if !ok {
		bm.mu.Unlock()
		bm.logger.Warn("relocate %v -> %v: в карте нет исходной клетки", old, new)
		m.InvariantViolation("missing_source")
		return fmt.Errorf("%w: %v", ErrMissingEntry, old)
	}
	if other, busy := bm.entities[new]; busy {
		bm.mu.Unlock()
		bm.logger.Warn("relocate %v -> %v: цель занята сущностью %d", old, new, other)
		m.InvariantViolation("target_occupied")
		return fmt.Errorf("%w: %v", ErrTargetOccupied, new)
	}
	delete(bm.entities, old)
	bm.entities[new] = id
	bm.mu.Unlock()
	return nil
}

// Len возвращает количество занятых клеток
func (bm *BlockMap) Len() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return len(bm.entities)
}

// Each обходит записи в детерминированном порядке (Y, X, Z).
// Обход прекращается, если fn возвращает false.
func (bm *BlockMap) Each(fn func(pos vec.Vec3, id EntityID) bool) {
	bm.mu.RLock()
	keys := make([]vec.Vec3, 0, len(bm.entities))
	for pos := range bm.entities {
		keys = append(keys, pos)
	}
	snapshot := make(map[vec.Vec3]EntityID, len(bm.entities))
	for pos, id := range bm.entities {
		snapshot[pos] = id
	}
	bm.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return lessCell(keys[i], keys[j]) })
	for _, pos := range keys {
		if !fn(pos, snapshot[pos]) {
			return
		}
	}
}

func lessCell(a, b vec.Vec3) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}
