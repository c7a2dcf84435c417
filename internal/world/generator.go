package world

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/physics"
	"github.com/annel0/rootgrove/internal/util"
	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Константы генерации по умолчанию
const (
	DefaultLevelMin      = -100
	DefaultLevelMax      = 100
	DefaultSeedCount     = 100
	DefaultTrunkHeight   = 18
	DefaultRootingHeight = 5
	DefaultRootChance    = 0.3
	DefaultRootGrowth    = 0.1
	DefaultGroundY       = -1
	DefaultBushCount     = 350
	DefaultMaxRootSteps  = 1 << 16
)

// ErrInvalidParams — некорректные параметры генерации
var ErrInvalidParams = errors.New("invalid generator params")

// DefaultHeightChances — дискретное распределение высот стволов для кластеров
var DefaultHeightChances = []float64{0.1, 0.4, 0.7, 0.85, 0.95, 0.96, 0.98, 0.99}

// Rand — поток случайных чисел генератора. *rand.Rand ему удовлетворяет.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// GeneratorParams — параметры генерации мира
type GeneratorParams struct {
	LevelMin      int // Границы квадрата по X/Z, включительно
	LevelMax      int
	SeedCount     int
	TrunkHeight   int
	RootingHeight int
	RootChance    float64
	RootGrowth    float64
	GroundY       int
	BushCount     int
	ClusterCount  int // Кластеры ранней версии генератора, по умолчанию выключены
	HeightChances []float64
	Resources     ResourceTable
	MaxRootSteps  int // Предел созданных блоков за один вызов RootAround
	NoiseSeed     int64
	NoiseScale    float64
}

// DefaultGeneratorParams возвращает параметры по умолчанию
func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		LevelMin:      DefaultLevelMin,
		LevelMax:      DefaultLevelMax,
		SeedCount:     DefaultSeedCount,
		TrunkHeight:   DefaultTrunkHeight,
		RootingHeight: DefaultRootingHeight,
		RootChance:    DefaultRootChance,
		RootGrowth:    DefaultRootGrowth,
		GroundY:       DefaultGroundY,
		BushCount:     DefaultBushCount,
		HeightChances: append([]float64(nil), DefaultHeightChances...),
		Resources:     DefaultResourceTable(),
		MaxRootSteps:  DefaultMaxRootSteps,
		NoiseScale:    0.05,
	}
}

// Validate проверяет параметры генерации
func (p GeneratorParams) Validate() error {
	switch {
	case p.LevelMax < p.LevelMin:
		return fmt.Errorf("%w: level bounds [%d, %d]", ErrInvalidParams, p.LevelMin, p.LevelMax)
	case p.SeedCount < 0 || p.ClusterCount < 0 || p.BushCount < 0:
		return fmt.Errorf("%w: negative counts", ErrInvalidParams)
	case p.TrunkHeight < 0:
		return fmt.Errorf("%w: trunk height %d", ErrInvalidParams, p.TrunkHeight)
	case p.RootGrowth < 0:
		return fmt.Errorf("%w: root growth %v", ErrInvalidParams, p.RootGrowth)
	case p.MaxRootSteps <= 0:
		return fmt.Errorf("%w: max root steps %d", ErrInvalidParams, p.MaxRootSteps)
	}
	if err := p.Resources.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// GeneratorDeps — внешние зависимости генератора
type GeneratorDeps struct {
	Rand    Rand
	Blocks  *BlockMap
	Roots   *RootStore
	Spawner Spawner
	Assets  Assets
	Metrics *Metrics
}

// GenerationReport — итог генерации
type GenerationReport struct {
	Seeds       int
	Skipped     int
	Clusters    int
	Blocks      int
	GroundTiles int
	Bushes      int
	GroundID    EntityID
	Duration    time.Duration
}

// rootFrame — кадр явного стека роста корней
type rootFrame struct {
	cell   vec.Vec3
	next   int // Индекс следующего соседа в vec.HorizontalNeighbors
	kind   ResourceKind
	chance float64
	growth float64
}

// WorldGenerator выращивает корни и стволы в ограниченной решётке
type WorldGenerator struct {
	params    GeneratorParams
	rng       Rand
	blocks    *BlockMap
	roots     *RootStore
	spawner   Spawner
	assets    Assets
	materials MaterialTable
	noise     *util.Noise
	metrics   *Metrics
	logger    *logging.Logger
	tracer    trace.Tracer
	spawned   int
}

// NewWorldGenerator создаёт генератор. Таблица материалов разрешается здесь же:
// отсутствующий материал — ошибка конфигурации.
func NewWorldGenerator(params GeneratorParams, deps GeneratorDeps) (*WorldGenerator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if deps.Rand == nil || deps.Blocks == nil || deps.Roots == nil || deps.Spawner == nil {
		return nil, fmt.Errorf("%w: missing dependency", ErrInvalidParams)
	}
	materials, err := ResolveMaterials(deps.Assets.Materials)
	if err != nil {
		return nil, fmt.Errorf("resolve materials: %w", err)
	}
	return &WorldGenerator{
		params:    params,
		rng:       deps.Rand,
		blocks:    deps.Blocks,
		roots:     deps.Roots,
		spawner:   deps.Spawner,
		assets:    deps.Assets,
		materials: materials,
		noise:     util.NewNoise(params.NoiseSeed, params.NoiseScale),
		metrics:   deps.Metrics,
		logger:    logging.GetWorldgenLogger(),
		tracer:    otel.Tracer("rootgrove/worldgen"),
	}, nil
}

// Params возвращает параметры генератора
func (g *WorldGenerator) Params() GeneratorParams {
	return g.params
}

// Generate сеет стволы, затем кластеры, плоскость земли и кусты
func (g *WorldGenerator) Generate(ctx context.Context) (GenerationReport, error) {
	if err := ctx.Err(); err != nil {
		return GenerationReport{}, fmt.Errorf("generate: %w", err)
	}
	_, span := g.tracer.Start(ctx, "worldgen.Generate")
	defer span.End()

	start := time.Now()
	report := GenerationReport{}
	before := g.spawned

	for i := 0; i < g.params.SeedCount; i++ {
		loc := g.RandomLocation()
		if g.blocks.Contains(loc) {
			report.Skipped++
			continue
		}
		g.MakeTrunk(int64(i), loc, ResourceSap, g.params.TrunkHeight, g.params.RootingHeight,
			g.params.RootChance, g.params.RootGrowth)
		report.Seeds++
	}

	for j := 0; j < g.params.ClusterCount; j++ {
		loc := g.RandomLocation()
		if g.blocks.Contains(loc) {
			continue
		}
		g.MakeCluster(int64(g.params.SeedCount+j), loc, g.RandomResource())
		report.Clusters++
	}

	report.GroundTiles, report.GroundID = g.MakeGroundPlane()
	report.Bushes = g.ScatterBushes()
	report.Blocks = g.spawned - before
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("worldgen.seeds", report.Seeds),
		attribute.Int("worldgen.blocks", report.Blocks),
		attribute.Int("worldgen.skipped", report.Skipped),
	)
	g.metrics.ObserveGeneration(report.Duration)
	g.logger.Info("мир сгенерирован: стволов %d, блоков %d, пропущено %d, за %v",
		report.Seeds, report.Blocks, report.Skipped, report.Duration)
	return report, nil
}

// RandomLocation возвращает случайную клетку в границах уровня на y=0
func (g *WorldGenerator) RandomLocation() vec.Vec3 {
	span := g.params.LevelMax - g.params.LevelMin + 1
	x := g.params.LevelMin + g.rng.Intn(span)
	z := g.params.LevelMin + g.rng.Intn(span)
	return vec.New(x, 0, z)
}

// RandomResource выбирает вид ресурса: >0.8 сок, >0.5 кора, иначе древесина
func (g *WorldGenerator) RandomResource() ResourceKind {
	u := g.rng.Float64()
	if u > 0.8 {
		return ResourceSap
	}
	if u > 0.5 {
		return ResourceBark
	}
	return ResourceWood
}

// PickHeight выбирает высоту ствола по таблице HeightChances.
// 0 — ствола нет.
func (g *WorldGenerator) PickHeight() int {
	u := g.rng.Float64()
	total := 0.0
	for i, p := range g.params.HeightChances {
		total += p
		if total > u {
			return i
		}
	}
	return len(g.params.HeightChances)
}

// MakeTrunk строит вертикальный ствол высоты height над seed.
// До rootingHeight включительно каждый уровень пускает боковые корни,
// выше ставятся простые блоки.
func (g *WorldGenerator) MakeTrunk(gen int64, seed vec.Vec3, kind ResourceKind, height, rootingHeight int, chance, growth float64) int {
	before := g.spawned
	for y := 0; y < height; y++ {
		cell := seed
		cell.SetY(seed.Y + y)
		if y <= rootingHeight {
			g.RootABlock(gen, cell, kind, chance, growth, false)
			continue
		}
		if !g.blocks.Contains(cell) {
			g.spawnRoot(gen, cell, kind)
		}
	}
	return g.spawned - before
}

// MakeCluster — кластер ранней версии: боковые корни вокруг loc и ствол
// случайной высоты
func (g *WorldGenerator) MakeCluster(gen int64, loc vec.Vec3, kind ResourceKind) int {
	before := g.spawned
	g.RootAround(gen, loc, kind, g.params.RootChance, g.params.RootGrowth)
	if h := g.PickHeight(); h > 0 {
		g.MakeTrunk(gen, loc, kind, h, -1, 0, 0)
	}
	return g.spawned - before
}

// RootABlock ставит блок корня в cell и растит корни вокруг него.
// Занятая клетка — ничего не делает. При vertical с вероятностью 1-chance
// ставится ещё один блок прямо над cell, и он растит корни вокруг себя так же,
// как нижний.
func (g *WorldGenerator) RootABlock(gen int64, cell vec.Vec3, kind ResourceKind, chance, growth float64, vertical bool) int {
	if g.blocks.Contains(cell) {
		return 0
	}
	stack, planted := g.plantRoot(gen, nil, cell, kind, chance, growth, vertical)
	return planted + g.grow(gen, cell, stack)
}

// RootAround растит корни по 8 соседям cell в горизонтальной плоскости.
// Обход в глубину на явном стеке, порядок соседей фиксирован.
// Провал броска понижает вид ресурса: Sap→Wood→Bark, на Bark ветвь обрывается.
func (g *WorldGenerator) RootAround(gen int64, cell vec.Vec3, kind ResourceKind, chance, growth float64) int {
	stack := []rootFrame{{cell: cell, kind: kind, chance: chance, growth: growth}}
	return g.grow(gen, cell, stack)
}

// grow разворачивает стек кадров до опустошения или до предела MaxRootSteps.
// origin нужен только для журнала.
func (g *WorldGenerator) grow(gen int64, origin vec.Vec3, stack []rootFrame) int {
	neighbors := vec.HorizontalNeighbors
	steps := 0

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(neighbors) {
			stack = stack[:len(stack)-1]
			continue
		}
		next := top.cell.AddXZ(neighbors[top.next])
		top.next++

		if !g.inBounds(next) || g.blocks.Contains(next) {
			continue
		}

		if g.rng.Float64() >= top.chance {
			if steps >= g.params.MaxRootSteps {
				g.logger.Warn("рост корней от %v остановлен: превышен предел в %d блоков", origin, g.params.MaxRootSteps)
				g.metrics.InvariantViolation("root_step_limit")
				return steps
			}
			var planted int
			kind, chance, growth := top.kind, top.chance, top.growth
			// top больше не валиден: append может переложить стек
			stack, planted = g.plantRoot(gen, stack, next, kind, chance, growth, true)
			steps += planted
			continue
		}

		down, c, gr, ok := top.kind.Downgrade()
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}
		g.metrics.Transition(top.kind, down)
		top.kind, top.chance, top.growth = down, c, gr
	}
	return steps
}

// plantRoot ставит блок в cell и кладёт на стек его кадр роста.
// При vertical с вероятностью 1-chance ставит блок над cell, и кадр верхнего
// блока ложится поверх нижнего, поэтому верхний ярус растёт первым.
// Возвращает стек и число созданных блоков.
func (g *WorldGenerator) plantRoot(gen int64, stack []rootFrame, cell vec.Vec3, kind ResourceKind, chance, growth float64, vertical bool) ([]rootFrame, int) {
	g.spawnRoot(gen, cell, kind)
	stack = append(stack, rootFrame{cell: cell, kind: kind, chance: chance + growth, growth: growth})
	if !vertical || g.rng.Float64() >= 1-chance {
		return stack, 1
	}
	above := cell.Above()
	if g.blocks.Contains(above) {
		return stack, 1
	}
	g.spawnRoot(gen, above, kind)
	stack = append(stack, rootFrame{cell: above, kind: kind, chance: chance + growth, growth: growth})
	return stack, 2
}

// spawnRoot создаёт блок корня в движке и записывает его в карту.
// Вызывающий проверяет, что клетка свободна.
func (g *WorldGenerator) spawnRoot(gen int64, cell vec.Vec3, kind ResourceKind) *RootBlock {
	info := g.params.Resources[kind]
	yield := info.Yield.Min
	if span := info.Yield.Max - info.Yield.Min; span > 0 {
		yield += g.rng.Intn(span + 1)
	}

	material := g.materials.For(kind)
	id := g.spawner.SpawnBlock(BlockSpawn{
		Position: cell,
		Mesh:     g.assets.CubeMesh,
		Material: material,
		Collider: physics.NewCuboid(0.5, 0.5, 0.5).WithEvents(),
	})

	block := &RootBlock{
		ID:           id,
		GenerationID: gen,
		Resource:     kind,
		Mineable:     yield,
		Health:       info.BaseHealth,
		Position:     cell,
		Material:     material,
		MineOnTouch:  kind.MineOnTouch(),
		State:        BlockAlive,
	}
	g.roots.Add(block)
	g.blocks.Insert(cell, id)
	g.metrics.BlockSpawned(kind)
	g.spawned++
	return block
}

// MakeGroundPlane выкладывает плитки земли на [LevelMin, LevelMax) по X и Z
// на высоте GroundY. Плитки только визуальные: в карту не попадают и
// коллайдеров не имеют. Вся плоскость покрыта одним коллайдером.
func (g *WorldGenerator) MakeGroundPlane() (int, EntityID) {
	lo, hi := g.params.LevelMin, g.params.LevelMax
	y := float32(g.params.GroundY)
	tiles := 0
	for x := lo; x < hi; x++ {
		for z := lo; z < hi; z++ {
			g.spawner.SpawnGroundTile(GroundTile{
				Position: mgl32.Vec3{float32(x), y, float32(z)},
				Mesh:     g.assets.PlaneMesh,
				Material: g.assets.GroundMaterial,
				Tint:     float32(g.noise.Sample2D(float64(x), float64(z))),
			})
			tiles++
		}
	}

	half := float32(hi-lo) / 2
	center := mgl32.Vec3{float32(lo) + half - 0.5, y, float32(lo) + half - 0.5}
	groundID := g.spawner.SpawnCollider(center, physics.NewCuboid(half, 0.5, half))
	g.logger.Debug("плоскость земли: %d плиток, коллайдер %d", tiles, groundID)
	return tiles, groundID
}

// ScatterBushes расставляет декоративные кусты. В карту они не попадают.
func (g *WorldGenerator) ScatterBushes() int {
	for i := 0; i < g.params.BushCount; i++ {
		pos := g.RandomLocation().ToWorld()
		pos[1] = float32(g.params.GroundY) + 1
		s := float32(0.5 + g.rng.Float64()*0.5)
		g.spawner.SpawnBillboard(Billboard{
			Position: pos,
			Mesh:     g.assets.PlaneMesh,
			Material: g.assets.BushMaterial,
			Scale:    mgl32.Vec3{s, s, s},
		})
	}
	return g.params.BushCount
}

func (g *WorldGenerator) inBounds(c vec.Vec3) bool {
	return c.X >= g.params.LevelMin && c.X <= g.params.LevelMax &&
		c.Z >= g.params.LevelMin && c.Z <= g.params.LevelMax
}
