package world

import (
	"github.com/annel0/rootgrove/internal/physics"
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshHandle — непрозрачная ссылка на меш движка
type MeshHandle uint32

// MaterialHandle — непрозрачная ссылка на материал движка
type MaterialHandle uint32

// NoMaterial — нулевой дескриптор, материал не зарегистрирован
const NoMaterial MaterialHandle = 0

// BlockSpawn описывает блок корня для создания на стороне движка
type BlockSpawn struct {
	Position vec.Vec3
	Mesh     MeshHandle
	Material MaterialHandle
	Collider physics.Collider
}

// GroundTile — визуальная плитка земли без коллайдера и без записи в карте
type GroundTile struct {
	Position mgl32.Vec3
	Mesh     MeshHandle
	Material MaterialHandle
	Tint     float32 // Оттенок из шума Перлина, 0..1
}

// Billboard — декоративный спрайт (кусты), только визуальный
type Billboard struct {
	Position mgl32.Vec3
	Mesh     MeshHandle
	Material MaterialHandle
	Scale    mgl32.Vec3
}

// AssetRegistry регистрирует меши и материалы
type AssetRegistry interface {
	AddMesh(name string) MeshHandle
	AddMaterial(spec MaterialSpec) MaterialHandle
}

// Spawner создаёт визуальные и физические сущности
type Spawner interface {
	SpawnBlock(spec BlockSpawn) EntityID
	SpawnGroundTile(tile GroundTile)
	SpawnBillboard(b Billboard)
	SpawnCollider(center mgl32.Vec3, collider physics.Collider) EntityID
}

// Renderer обновляет отображаемую позицию сущности
type Renderer interface {
	SetPosition(id EntityID, pos mgl32.Vec3)
}

// Despawner удаляет сущность из движка
type Despawner interface {
	Despawn(id EntityID)
}

// Engine — полный набор возможностей движка, нужный ядру
type Engine interface {
	AssetRegistry
	Spawner
	Renderer
	Despawner
}

// Assets — дескрипторы, зарегистрированные при запуске
type Assets struct {
	CubeMesh       MeshHandle
	PlaneMesh      MeshHandle
	Materials      map[ResourceKind]MaterialHandle
	GroundMaterial MaterialHandle
	BushMaterial   MaterialHandle
}

// RegisterAssets регистрирует меши и материалы корней, земли и кустов
func RegisterAssets(reg AssetRegistry, specs map[ResourceKind]MaterialSpec) Assets {
	cube := reg.AddMesh("cube")
	plane := reg.AddMesh("plane")
	ground := reg.AddMaterial(MaterialSpec{Name: "ground", Texture: "ground.png", Color: mgl32.Vec3{1, 1, 1}})
	bush := reg.AddMaterial(MaterialSpec{Name: "bush", Texture: "bush.png", Color: mgl32.Vec3{1, 1, 1}})

	assets := Assets{
		CubeMesh:       cube,
		PlaneMesh:      plane,
		Materials:      make(map[ResourceKind]MaterialHandle, len(specs)),
		GroundMaterial: ground,
		BushMaterial:   bush,
	}
	for _, kind := range AllResourceKinds {
		spec, ok := specs[kind]
		if !ok {
			continue
		}
		assets.Materials[kind] = reg.AddMaterial(spec)
	}
	return assets
}
