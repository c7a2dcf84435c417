package world

import (
	"sort"
	"sync"

	"github.com/annel0/rootgrove/internal/vec"
)

// BlockState — состояние разрушаемого блока
type BlockState uint8

const (
	BlockAlive     BlockState = iota // Здоровье > 0
	BlockDestroyed                   // Здоровье <= 0, конечное состояние
)

// RootBlock представляет разрушаемый блок корня, дающий ресурс
type RootBlock struct {
	ID           EntityID       // Сущность движка
	GenerationID int64          // Номер семени, из которого вырос блок (только для диагностики)
	Resource     ResourceKind   // Вид ресурса
	Mineable     int            // Добыча, назначенная при создании
	Health       int            // Текущее здоровье
	Position     vec.Vec3       // Всегда совпадает с ключом в BlockMap
	Material     MaterialHandle // Визуальный материал
	MineOnTouch  bool           // Повреждается касанием (сок)
	State        BlockState
}

// Alive возвращает true, пока блок не разрушен
func (b *RootBlock) Alive() bool {
	return b.State == BlockAlive
}

// ApplyDamage уменьшает здоровье. Возвращает true, если блок разрушен этим ударом.
// Удар по уже разрушенному блоку ничего не делает.
func (b *RootBlock) ApplyDamage(amount int) bool {
	if !b.Alive() {
		return false
	}
	b.Health -= amount
	if b.Health <= 0 {
		b.State = BlockDestroyed
		return true
	}
	return false
}

// Collect забирает добычу: возвращает её и обнуляет, чтобы начислить ровно один раз
func (b *RootBlock) Collect() int {
	amount := b.Mineable
	b.Mineable = 0
	return amount
}

// RootStore хранит блоки корней по идентификатору сущности
type RootStore struct {
	mu     sync.RWMutex
	blocks map[EntityID]*RootBlock
}

// NewRootStore создаёт пустое хранилище
func NewRootStore() *RootStore {
	return &RootStore{blocks: make(map[EntityID]*RootBlock)}
}

// Add регистрирует блок
func (rs *RootStore) Add(b *RootBlock) {
	rs.mu.Lock()
	rs.blocks[b.ID] = b
	rs.mu.Unlock()
}

// Get возвращает блок по идентификатору
func (rs *RootStore) Get(id EntityID) (*RootBlock, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	b, ok := rs.blocks[id]
	return b, ok
}

// Remove удаляет блок из хранилища
func (rs *RootStore) Remove(id EntityID) {
	rs.mu.Lock()
	delete(rs.blocks, id)
	rs.mu.Unlock()
}

// Len возвращает количество блоков
func (rs *RootStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.blocks)
}

// ByHeight возвращает блоки снизу вверх (затем по ID), чтобы колонна
// падала согласованно в пределах одного тика
func (rs *RootStore) ByHeight() []*RootBlock {
	out := rs.snapshot()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position.Y != out[j].Position.Y {
			return out[i].Position.Y < out[j].Position.Y
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// All возвращает блоки по возрастанию ID
func (rs *RootStore) All() []*RootBlock {
	out := rs.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (rs *RootStore) snapshot() []*RootBlock {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]*RootBlock, 0, len(rs.blocks))
	for _, b := range rs.blocks {
		out = append(out, b)
	}
	return out
}

// CountByResource считает живые блоки по видам ресурса
func (rs *RootStore) CountByResource() map[ResourceKind]int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	counts := make(map[ResourceKind]int, resourceKindCount)
	for _, b := range rs.blocks {
		if b.Alive() {
			counts[b.Resource]++
		}
	}
	return counts
}
