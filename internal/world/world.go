package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/rootgrove/internal/eventbus"
	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/physics"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTickRate — длительность одного тика симуляции
const DefaultTickRate = time.Second / 60

// PlayerIntegrator — движок, который сам применяет импульс игрока.
// Безголовый MemoryEngine его реализует.
type PlayerIntegrator interface {
	IntegratePlayer(p *Player, damping, dt float32)
}

// CollisionSource — движок, который сам находит контакты коллайдеров.
// Run забирает их перед каждым тиком.
type CollisionSource interface {
	Contacts() []physics.CollisionEvent
}

// SimulationConfig — параметры симуляции
type SimulationConfig struct {
	Generator      GeneratorParams
	GroundLevel    int
	Movement       MovementConfig
	Damage         DamageConfig
	Camera         CameraConfig
	AttackRange    float32
	StrikeDuration float32
	Damping        float32
	TickRate       time.Duration
	PlayerStart    mgl32.Vec3
}

// DefaultSimulationConfig возвращает параметры по умолчанию
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Generator:      DefaultGeneratorParams(),
		GroundLevel:    DefaultGroundLevel,
		Movement:       DefaultMovementConfig(),
		Damage:         DefaultDamageConfig(),
		Camera:         DefaultCameraConfig(),
		AttackRange:    DefaultAttackRange,
		StrikeDuration: DefaultStrikeDuration,
		Damping:        DefaultDamping,
		TickRate:       DefaultTickRate,
		PlayerStart:    mgl32.Vec3{0, 0, 0},
	}
}

// SimulationDeps — внешние коллабораторы симуляции
type SimulationDeps struct {
	Engine        Engine
	Rays          physics.RayCaster // nil — луч по карте занятости
	Rand          Rand
	Bus           eventbus.EventBus // nil — события не публикуются
	Metrics       *Metrics
	MaterialSpecs map[ResourceKind]MaterialSpec // nil — DefaultMaterialSpecs
}

// StepResult — итог одного тика
type StepResult struct {
	Tick      uint64
	Damage    DamageResult
	Collapsed int
	Anims     []AnimEvent
}

// Simulation владеет картой занятости и выполняет системы в фиксированном
// порядке: движение, атака, касания, урон, обрушение, анимация, камера.
// Урон идёт раньше обрушения, поэтому разрушенный в тике блок не сдвигается.
type Simulation struct {
	mu          sync.Mutex
	cfg         SimulationConfig
	engine      Engine
	blocks      *BlockMap
	roots       *RootStore
	players     Players
	player      *Player
	queue       *EventQueue[DamageEvent]
	grid        *physics.GridRayCaster
	generator   *WorldGenerator
	movement    *MovementSystem
	attack      *AttackSystem
	collision   *CollisionSystem
	damage      *DamageSystem
	collapse    *CollapseSystem
	animation   *AnimationSystem
	camera      *Camera
	currentTick uint64
	generated   bool
	logger      *logging.Logger
	tracer      trace.Tracer
}

// NewSimulation собирает мир: регистрирует ассеты, создаёт игрока и системы.
// Ошибка конфигурации материалов возвращается здесь.
func NewSimulation(cfg SimulationConfig, deps SimulationDeps) (*Simulation, error) {
	if deps.Engine == nil || deps.Rand == nil {
		return nil, errors.New("simulation: engine and rand are required")
	}
	specs := deps.MaterialSpecs
	if specs == nil {
		specs = DefaultMaterialSpecs()
	}

	blocks := NewBlockMap()
	blocks.SetMetrics(deps.Metrics)
	roots := NewRootStore()
	queue := &EventQueue[DamageEvent]{}
	assets := RegisterAssets(deps.Engine, specs)

	generator, err := NewWorldGenerator(cfg.Generator, GeneratorDeps{
		Rand:    deps.Rand,
		Blocks:  blocks,
		Roots:   roots,
		Spawner: deps.Engine,
		Assets:  assets,
		Metrics: deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	rays := deps.Rays
	var grid *physics.GridRayCaster
	if rays == nil {
		grid = physics.NewGridRayCaster(CellOccupant(blocks))
		rays = grid
	}

	playerID := deps.Engine.SpawnCollider(cfg.PlayerStart, physics.NewBall(0.5).WithEvents())
	player := NewPlayer(playerID, cfg.PlayerStart)
	players := Players{}
	players.Add(player)

	camera := NewCamera(cfg.Camera, deps.Rand)
	events := NewEventPublisher(deps.Bus)
	damage := NewDamageSystem(cfg.Damage, queue, blocks, roots, players,
		deps.Engine, camera, events, deps.Metrics)

	return &Simulation{
		cfg:       cfg,
		engine:    deps.Engine,
		blocks:    blocks,
		roots:     roots,
		players:   players,
		player:    player,
		queue:     queue,
		grid:      grid,
		generator: generator,
		movement:  NewMovementSystem(cfg.Movement, rays),
		attack:    NewAttackSystem(cfg.AttackRange, roots, rays, queue),
		collision: NewCollisionSystem(roots, queue),
		damage:    damage,
		collapse:  NewCollapseSystem(cfg.GroundLevel, blocks, roots, deps.Engine, deps.Metrics),
		animation: NewAnimationSystem(cfg.StrikeDuration),
		camera:    camera,
		logger:    logging.GetSimLogger(),
		tracer:    otel.Tracer("rootgrove/sim"),
	}, nil
}

// Generate строит мир. Повторный вызов — ошибка.
func (s *Simulation) Generate(ctx context.Context) (GenerationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generated {
		return GenerationReport{}, errors.New("simulation: world already generated")
	}
	report, err := s.generator.Generate(ctx)
	if err != nil {
		return report, err
	}
	if s.grid != nil {
		// Верх коллайдера земли на полклетки выше центра плитки
		s.grid.SetGround(float32(s.cfg.Generator.GroundY)+0.5, report.GroundID)
	}
	s.generated = true
	return report, nil
}

// Step выполняет один тик
func (s *Simulation) Step(ctx context.Context, in Input, collisions []physics.CollisionEvent, dt float32) StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "sim.Step")
	defer span.End()

	s.currentTick++
	res := StepResult{Tick: s.currentTick}

	if ev, ok := s.movement.Tick(in, s.player, dt); ok {
		res.Anims = append(res.Anims, ev)
	}
	if integrator, ok := s.engine.(PlayerIntegrator); ok {
		integrator.IntegratePlayer(s.player, s.cfg.Damping, dt)
	}
	if ev, ok := s.attack.Tick(in, s.player); ok {
		res.Anims = append(res.Anims, ev)
	}
	s.collision.Handle(collisions)
	res.Damage = s.damage.Tick(ctx, s.currentTick)
	res.Collapsed = s.collapse.Tick()
	s.animation.Tick(s.player, res.Anims, dt)
	s.camera.Tick(in, s.player.Position, dt)

	span.SetAttributes(
		attribute.Int64("sim.tick", int64(s.currentTick)),
		attribute.Int("sim.collapsed", res.Collapsed),
		attribute.Int("sim.destroyed", len(res.Damage.Destroyed)),
	)
	return res
}

// Run крутит тики с частотой TickRate, пока не отменён ctx или не выполнено
// maxTicks тиков (0 — без ограничения). Возвращает число выполненных тиков.
func (s *Simulation) Run(ctx context.Context, input InputSource, maxTicks uint64) uint64 {
	rate := s.cfg.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	dt := float32(rate.Seconds())
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	source, _ := s.engine.(CollisionSource)
	var done uint64
	for maxTicks == 0 || done < maxTicks {
		select {
		case <-ctx.Done():
			return done
		case <-ticker.C:
			var collisions []physics.CollisionEvent
			if source != nil {
				collisions = source.Contacts()
			}
			res := s.Step(ctx, input.Poll(s.Tick()+1), collisions, dt)
			done++
			if len(res.Damage.Destroyed) > 0 || res.Collapsed > 0 {
				s.logger.Debug("тик %d: разрушено %d, обрушилось %d",
					res.Tick, len(res.Damage.Destroyed), res.Collapsed)
			}
		}
	}
	return done
}

// Tick возвращает номер последнего выполненного тика
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// Blocks возвращает карту занятости
func (s *Simulation) Blocks() *BlockMap { return s.blocks }

// Roots возвращает хранилище блоков корней
func (s *Simulation) Roots() *RootStore { return s.roots }

// Player возвращает игрока
func (s *Simulation) Player() *Player { return s.player }

// Camera возвращает камеру
func (s *Simulation) Camera() *Camera { return s.camera }

// Damage возвращает очередь урона
func (s *Simulation) Damage() *EventQueue[DamageEvent] { return s.queue }

// Generator возвращает генератор мира
func (s *Simulation) Generator() *WorldGenerator { return s.generator }
