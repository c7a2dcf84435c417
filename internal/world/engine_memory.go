package world

import (
	"math"
	"sort"
	"sync"

	"github.com/annel0/rootgrove/internal/physics"
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// memoryEntity — запись о сущности в безголовом движке
type memoryEntity struct {
	position mgl32.Vec3
	collider physics.Collider
	material MaterialHandle
}

// MemoryEngine — безголовая реализация Engine: хранит сущности в памяти,
// ничего не рисует. Используется раннером и тестами.
type MemoryEngine struct {
	mu        sync.RWMutex
	nextID    EntityID
	entities  map[EntityID]*memoryEntity
	despawned map[EntityID]struct{}
	meshes    []string
	materials []MaterialSpec
	tiles     []GroundTile
	bushes    []Billboard
	colliders []EntityID
	contacts  map[contactPair]struct{}
}

// contactPair — пара в контакте; a всегда шар
type contactPair struct {
	a, b EntityID
}

// NewMemoryEngine создаёт движок; идентификаторы начинаются с 1000
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		nextID:    1000,
		entities:  make(map[EntityID]*memoryEntity),
		despawned: make(map[EntityID]struct{}),
		contacts:  make(map[contactPair]struct{}),
	}
}

func (e *MemoryEngine) allocate(ent *memoryEntity) EntityID {
	e.nextID++
	e.entities[e.nextID] = ent
	return e.nextID
}

// AddMesh реализует AssetRegistry
func (e *MemoryEngine) AddMesh(name string) MeshHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meshes = append(e.meshes, name)
	return MeshHandle(len(e.meshes))
}

// AddMaterial реализует AssetRegistry. Дескрипторы начинаются с 1.
func (e *MemoryEngine) AddMaterial(spec MaterialSpec) MaterialHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.materials = append(e.materials, spec)
	return MaterialHandle(len(e.materials))
}

// Material возвращает описание материала по дескриптору
func (e *MemoryEngine) Material(h MaterialHandle) (MaterialSpec, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if h == NoMaterial || int(h) > len(e.materials) {
		return MaterialSpec{}, false
	}
	return e.materials[h-1], true
}

// SpawnBlock реализует Spawner
func (e *MemoryEngine) SpawnBlock(spec BlockSpawn) EntityID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allocate(&memoryEntity{
		position: spec.Position.ToWorld(),
		collider: spec.Collider,
		material: spec.Material,
	})
}

// SpawnGroundTile реализует Spawner
func (e *MemoryEngine) SpawnGroundTile(tile GroundTile) {
	e.mu.Lock()
	e.tiles = append(e.tiles, tile)
	e.mu.Unlock()
}

// SpawnBillboard реализует Spawner
func (e *MemoryEngine) SpawnBillboard(b Billboard) {
	e.mu.Lock()
	e.bushes = append(e.bushes, b)
	e.mu.Unlock()
}

// SpawnCollider реализует Spawner
func (e *MemoryEngine) SpawnCollider(center mgl32.Vec3, collider physics.Collider) EntityID {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.allocate(&memoryEntity{position: center, collider: collider})
	e.colliders = append(e.colliders, id)
	return id
}

// SetPosition реализует Renderer
func (e *MemoryEngine) SetPosition(id EntityID, pos mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ent, ok := e.entities[id]; ok {
		ent.position = pos
	}
}

// Despawn реализует Despawner
func (e *MemoryEngine) Despawn(id EntityID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.entities[id]; ok {
		delete(e.entities, id)
		e.despawned[id] = struct{}{}
	}
}

// Position возвращает текущую позицию сущности
func (e *MemoryEngine) Position(id EntityID) (mgl32.Vec3, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.entities[id]
	if !ok {
		return mgl32.Vec3{}, false
	}
	return ent.position, true
}

// Collider возвращает коллайдер сущности
func (e *MemoryEngine) Collider(id EntityID) (physics.Collider, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.entities[id]
	if !ok {
		return physics.Collider{}, false
	}
	return ent.collider, true
}

// Despawned сообщает, была ли сущность удалена
func (e *MemoryEngine) Despawned(id EntityID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.despawned[id]
	return ok
}

// EntityCount возвращает число живых сущностей
func (e *MemoryEngine) EntityCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entities)
}

// GroundTiles возвращает созданные плитки земли
func (e *MemoryEngine) GroundTiles() []GroundTile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]GroundTile(nil), e.tiles...)
}

// Billboards возвращает созданные декоративные спрайты
func (e *MemoryEngine) Billboards() []Billboard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Billboard(nil), e.bushes...)
}

// StandaloneColliders возвращает коллайдеры, созданные без визуальной части
func (e *MemoryEngine) StandaloneColliders() []EntityID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]EntityID(nil), e.colliders...)
}

// Contacts сверяет каждый шар с событиями с остальными коллайдерами с событиями
// и возвращает начала и концы контактов с прошлого вызова. В событии A — шар.
// Пропавшая сущность заканчивает свои контакты. Порядок событий детерминирован.
func (e *MemoryEngine) Contacts() []physics.CollisionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]EntityID, 0, len(e.entities))
	for id, ent := range e.entities {
		if ent.collider.ActiveEvents {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var events []physics.CollisionEvent
	current := make(map[contactPair]struct{}, len(e.contacts))
	for _, a := range ids {
		ball := e.entities[a]
		if ball.collider.Shape != physics.ShapeBall {
			continue
		}
		for _, b := range ids {
			other := e.entities[b]
			if b == a || (other.collider.Shape == physics.ShapeBall && b < a) {
				continue
			}
			if !physics.Overlaps(ball.collider, ball.position, other.collider, other.position) {
				continue
			}
			pair := contactPair{a: a, b: b}
			current[pair] = struct{}{}
			if _, ok := e.contacts[pair]; !ok {
				events = append(events, physics.CollisionEvent{Kind: physics.CollisionStarted, A: a, B: b})
			}
		}
	}

	var stopped []contactPair
	for pair := range e.contacts {
		if _, ok := current[pair]; !ok {
			stopped = append(stopped, pair)
		}
	}
	sort.Slice(stopped, func(i, j int) bool {
		if stopped[i].a != stopped[j].a {
			return stopped[i].a < stopped[j].a
		}
		return stopped[i].b < stopped[j].b
	})
	for _, pair := range stopped {
		events = append(events, physics.CollisionEvent{Kind: physics.CollisionStopped, A: pair.a, B: pair.b})
	}

	e.contacts = current
	return events
}

// IntegratePlayer — упрощённая физика игрока для безголового режима:
// импульс добавляется к скорости (масса 1), при отсутствии импульса
// горизонтальная скорость гасится, позиция интегрируется по Эйлеру.
func (e *MemoryEngine) IntegratePlayer(p *Player, damping, dt float32) {
	p.Velocity = p.Velocity.Add(p.Impulse)
	p.Velocity = DampVelocity(p.Velocity, p.Impulse, damping, dt)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	e.SetPosition(p.ID, p.Position)
}

// DampVelocity гасит горизонтальную скорость множителем damping^dt,
// когда движение не задано. Меньшее значение damping — сильнее торможение.
func DampVelocity(vel, impulse mgl32.Vec3, damping, dt float32) mgl32.Vec3 {
	if impulse != (mgl32.Vec3{}) {
		return vel
	}
	k := float32(math.Pow(float64(damping), float64(dt)))
	vel[0] *= k
	vel[2] *= k
	return vel
}

// CellOccupant адаптирует BlockMap к physics.OccupancyFunc
func CellOccupant(bm *BlockMap) physics.OccupancyFunc {
	return func(cell vec.Vec3) (uint64, bool) {
		return bm.Get(cell)
	}
}
