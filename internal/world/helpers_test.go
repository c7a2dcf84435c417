package world

import (
	"testing"

	"github.com/annel0/rootgrove/internal/physics"
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/stretchr/testify/require"
)

// constRand всегда возвращает одни и те же значения
type constRand struct {
	f float64
	n int
}

func (r constRand) Float64() float64 { return r.f }

func (r constRand) Intn(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// testWorld — генератор с безголовым движком и узкими границами
type testWorld struct {
	engine *MemoryEngine
	blocks *BlockMap
	roots  *RootStore
	gen    *WorldGenerator
}

func newTestWorld(t *testing.T, params GeneratorParams, rng Rand) *testWorld {
	t.Helper()
	engine := NewMemoryEngine()
	blocks := NewBlockMap()
	roots := NewRootStore()
	gen, err := NewWorldGenerator(params, GeneratorDeps{
		Rand:    rng,
		Blocks:  blocks,
		Roots:   roots,
		Spawner: engine,
		Assets:  RegisterAssets(engine, DefaultMaterialSpecs()),
	})
	require.NoError(t, err)
	return &testWorld{engine: engine, blocks: blocks, roots: roots, gen: gen}
}

func smallParams(lo, hi int) GeneratorParams {
	p := DefaultGeneratorParams()
	p.LevelMin = lo
	p.LevelMax = hi
	p.BushCount = 0
	return p
}

// placeBlock ставит живой блок напрямую, минуя генератор
func (w *testWorld) placeBlock(pos vec.Vec3, kind ResourceKind, health, yield int) *RootBlock {
	id := w.engine.SpawnBlock(BlockSpawn{
		Position: pos,
		Collider: physics.NewCuboid(0.5, 0.5, 0.5).WithEvents(),
	})
	b := &RootBlock{
		ID:          id,
		Resource:    kind,
		Mineable:    yield,
		Health:      health,
		Position:    pos,
		MineOnTouch: kind.MineOnTouch(),
	}
	w.roots.Add(b)
	w.blocks.Insert(pos, id)
	return b
}

// assertIndexConsistent проверяет, что позиция каждого блока совпадает с ключом карты
func assertIndexConsistent(t *testing.T, blocks *BlockMap, roots *RootStore) {
	t.Helper()
	require.Equal(t, roots.Len(), blocks.Len(), "число блоков и записей карты должно совпадать")
	for _, b := range roots.All() {
		id, ok := blocks.Get(b.Position)
		require.True(t, ok, "блок %d должен быть в карте по адресу %v", b.ID, b.Position)
		require.Equal(t, b.ID, id, "в клетке %v должен быть блок %d", b.Position, b.ID)
	}
}
