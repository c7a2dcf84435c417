package world

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/annel0/rootgrove/internal/physics"
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulation(t *testing.T, seed int64) (*Simulation, *MemoryEngine, *Metrics) {
	t.Helper()
	cfg := DefaultSimulationConfig()
	cfg.Generator = smallParams(-12, 12)
	cfg.Generator.SeedCount = 8
	cfg.Generator.TrunkHeight = 10
	cfg.Generator.RootingHeight = 3
	cfg.Generator.BushCount = 20
	cfg.PlayerStart = mgl32.Vec3{0, 12, 0}

	engine := NewMemoryEngine()
	metrics := NewMetrics(prometheus.NewRegistry())
	sim, err := NewSimulation(cfg, SimulationDeps{
		Engine:  engine,
		Rand:    rand.New(rand.NewSource(seed)),
		Metrics: metrics,
	})
	require.NoError(t, err)
	return sim, engine, metrics
}

func TestSimulation_Creation(t *testing.T) {
	sim, engine, _ := newTestSimulation(t, 1)

	assert.NotNil(t, sim.Player(), "игрок должен быть создан")
	assert.Equal(t, EntityID(1001), sim.Player().ID, "идентификаторы движка начинаются после 1000")
	assert.Zero(t, sim.Blocks().Len(), "до генерации карта пуста")
	assert.Equal(t, uint64(0), sim.Tick())
	assert.Equal(t, 1, engine.EntityCount())
}

func TestSimulation_GenerateOnce(t *testing.T) {
	sim, engine, metrics := newTestSimulation(t, 2)

	report, err := sim.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sim.Blocks().Len(), report.Blocks)
	assert.Equal(t, sim.Roots().Len(), report.Blocks)
	assert.Len(t, engine.Billboards(), 20)
	assert.Equal(t, float64(report.Blocks), testutil.ToFloat64(metrics.occupancy))

	_, err = sim.Generate(context.Background())
	assert.Error(t, err, "повторная генерация запрещена")
}

func TestSimulation_StepKeepsInvariants(t *testing.T) {
	sim, _, _ := newTestSimulation(t, 3)
	_, err := sim.Generate(context.Background())
	require.NoError(t, err)

	input := ScriptedInput{
		Held:   []Key{KeyLeft},
		Script: map[uint64][]Key{3: {KeyAttack}, 10: {KeyAttack, KeyJump}},
	}
	for tick := uint64(1); tick <= 40; tick++ {
		res := sim.Step(context.Background(), input.Poll(tick), nil, 1.0/60)
		assert.Equal(t, tick, res.Tick)
		assertIndexConsistent(t, sim.Blocks(), sim.Roots())
	}
	assert.Equal(t, DirLeft, sim.Player().LastDirection)
}

func TestSimulation_MiningBeforeCollapse(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Generator = smallParams(-3, 3)
	engine := NewMemoryEngine()
	sim, err := NewSimulation(cfg, SimulationDeps{Engine: engine, Rand: constRand{}})
	require.NoError(t, err)

	w := &testWorld{engine: engine, blocks: sim.Blocks(), roots: sim.Roots()}
	target := w.placeBlock(vec.New(0, 3, 0), ResourceSap, 1, 2)
	above := w.placeBlock(vec.New(0, 4, 0), ResourceWood, 4, 1)

	sim.Damage().Push(DamageEvent{Target: target.ID, Attacker: sim.Player().ID, Amount: 1})
	res := sim.Step(context.Background(), NewInput(), nil, 1.0/60)

	assert.Equal(t, []EntityID{target.ID}, res.Damage.Destroyed)
	assert.Equal(t, 3, target.Position.Y, "разрушенный блок не сдвигается")
	assert.Equal(t, 3, above.Position.Y, "верхний блок падает в освободившуюся клетку")
	assert.Equal(t, 1, res.Collapsed)
	assert.Equal(t, 2, sim.Player().Sap)
	assertIndexConsistent(t, sim.Blocks(), sim.Roots())
}

func TestSimulation_TouchMining(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Generator = smallParams(-3, 3)
	engine := NewMemoryEngine()
	sim, err := NewSimulation(cfg, SimulationDeps{Engine: engine, Rand: constRand{}})
	require.NoError(t, err)

	w := &testWorld{engine: engine, blocks: sim.Blocks(), roots: sim.Roots()}
	sap := w.placeBlock(vec.New(1, 0, 1), ResourceSap, 1, 5)

	res := sim.Step(context.Background(), NewInput(), []physics.CollisionEvent{
		{Kind: physics.CollisionStarted, A: sim.Player().ID, B: sap.ID},
	}, 1.0/60)

	assert.Equal(t, []EntityID{sap.ID}, res.Damage.Destroyed)
	assert.Equal(t, 5, sim.Player().Sap)
	assert.Greater(t, sim.Camera().ShakeIntensity(), float32(0))
}

func TestSimulation_Run(t *testing.T) {
	sim, _, _ := newTestSimulation(t, 4)
	sim.cfg.TickRate = time.Millisecond
	_, err := sim.Generate(context.Background())
	require.NoError(t, err)

	n := sim.Run(context.Background(), ScriptedInput{}, 5)
	assert.Equal(t, uint64(5), n)
	assert.Equal(t, uint64(5), sim.Tick())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, sim.Run(ctx, ScriptedInput{}, 0), "отменённый контекст останавливает цикл")
}

func TestSimulation_RunFeedsEngineContacts(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Generator = smallParams(-3, 3)
	cfg.TickRate = time.Millisecond
	cfg.PlayerStart = mgl32.Vec3{0, 0.9, 0}
	engine := NewMemoryEngine()
	sim, err := NewSimulation(cfg, SimulationDeps{Engine: engine, Rand: constRand{}})
	require.NoError(t, err)

	w := &testWorld{engine: engine, blocks: sim.Blocks(), roots: sim.Roots()}
	sap := w.placeBlock(vec.New(0, 0, 0), ResourceSap, 1, 3)
	wood := w.placeBlock(vec.New(0, 1, 1), ResourceWood, 4, 1)

	n := sim.Run(context.Background(), ScriptedInput{}, 2)
	assert.Equal(t, uint64(2), n)
	assert.False(t, sap.Alive(), "игрок стоит в соке, касание его разрушает")
	assert.True(t, engine.Despawned(sap.ID))
	assert.Equal(t, 3, sim.Player().Sap)
	assert.Equal(t, 4, wood.Health, "древесина касанием не добывается")
	assertIndexConsistent(t, sim.Blocks(), sim.Roots())
}

func TestMemoryEngine_Contacts(t *testing.T) {
	engine := NewMemoryEngine()
	player := engine.SpawnCollider(mgl32.Vec3{0, 0.9, 0}, physics.NewBall(0.5).WithEvents())
	block := engine.SpawnBlock(BlockSpawn{Position: vec.New(0, 0, 0), Collider: physics.NewCuboid(0.5, 0.5, 0.5).WithEvents()})
	engine.SpawnBlock(BlockSpawn{Position: vec.New(0, 0, 1), Collider: physics.NewCuboid(0.5, 0.5, 0.5).WithEvents()})
	engine.SpawnCollider(mgl32.Vec3{0, 0, 0}, physics.NewCuboid(5, 0.5, 5))

	started := physics.CollisionEvent{Kind: physics.CollisionStarted, A: player, B: block}
	assert.Equal(t, []physics.CollisionEvent{started}, engine.Contacts(),
		"контакт с соседним блоком и коллайдером без событий не сообщается")
	assert.Empty(t, engine.Contacts(), "продолжающийся контакт не повторяется")

	engine.SetPosition(player, mgl32.Vec3{0, 3, 0})
	assert.Equal(t, []physics.CollisionEvent{{Kind: physics.CollisionStopped, A: player, B: block}}, engine.Contacts())

	engine.SetPosition(player, mgl32.Vec3{0, 0.9, 0})
	assert.Equal(t, []physics.CollisionEvent{started}, engine.Contacts())
	engine.Despawn(block)
	assert.Equal(t, []physics.CollisionEvent{{Kind: physics.CollisionStopped, A: player, B: block}}, engine.Contacts(),
		"удалённый блок заканчивает контакт")
}

func TestSimulation_MissingMaterial(t *testing.T) {
	specs := DefaultMaterialSpecs()
	delete(specs, ResourceWood)
	_, err := NewSimulation(DefaultSimulationConfig(), SimulationDeps{
		Engine:        NewMemoryEngine(),
		Rand:          constRand{},
		MaterialSpecs: specs,
	})
	assert.ErrorIs(t, err, ErrMissingMaterial)
}
