package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig — конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("invalid config")

// Config корневая структура конфигурации приложения.
// Поля, отсутствующие в файле, сохраняют значения из Default().
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Gameplay  GameplayConfig  `yaml:"gameplay"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WorldConfig — параметры генерации мира
type WorldConfig struct {
	Seed          int64           `yaml:"seed"`
	LevelMin      int             `yaml:"level_min"`
	LevelMax      int             `yaml:"level_max"`
	SeedCount     int             `yaml:"seed_count"`
	ClusterCount  int             `yaml:"cluster_count"`
	TrunkHeight   int             `yaml:"trunk_height"`
	RootingHeight int             `yaml:"rooting_height"`
	RootChance    float64         `yaml:"root_chance"`
	RootGrowth    float64         `yaml:"root_growth"`
	GroundY       int             `yaml:"ground_y"`
	GroundLevel   int             `yaml:"ground_level"`
	BushCount     int             `yaml:"bush_count"`
	MaxRootSteps  int             `yaml:"max_root_steps"`
	NoiseScale    float64         `yaml:"noise_scale"`
	HeightChances []float64       `yaml:"height_chances"`
	Resources     ResourcesConfig `yaml:"resources"`
}

// ResourcesConfig — здоровье и добыча по видам ресурса.
// Поля, а не карта: частичная запись вида сливается со значениями по умолчанию.
type ResourcesConfig struct {
	Sap  world.ResourceInfo `yaml:"sap"`
	Bark world.ResourceInfo `yaml:"bark"`
	Wood world.ResourceInfo `yaml:"wood"`
}

// Table раскладывает записи по видам ресурса
func (r ResourcesConfig) Table() world.ResourceTable {
	var table world.ResourceTable
	table[world.ResourceSap] = r.Sap
	table[world.ResourceBark] = r.Bark
	table[world.ResourceWood] = r.Wood
	return table
}

// GameplayConfig — параметры управления, добычи и камеры
type GameplayConfig struct {
	MoveSpeed      float32       `yaml:"move_speed"`
	JumpImpulse    float32       `yaml:"jump_impulse"`
	GroundProbe    float32       `yaml:"ground_probe"`
	Damping        float32       `yaml:"damping"`
	AttackRange    float32       `yaml:"attack_range"`
	StrikeDuration float32       `yaml:"strike_duration"`
	HitShake       float32       `yaml:"hit_shake"`
	DestroyShake   float32       `yaml:"destroy_shake"`
	ShakeDecay     float32       `yaml:"shake_decay"`
	Bending        float32       `yaml:"bending"`
	BendWorld      bool          `yaml:"bend_world"`
	ZoomSpeed      float32       `yaml:"zoom_speed"`
	TickRate       time.Duration `yaml:"tick_rate"`
	PlayerStart    [3]float32    `yaml:"player_start"`
}

// ServerConfig — параметры безголового запуска
type ServerConfig struct {
	MetricsPort int    `yaml:"metrics_port"`
	MaxTicks    uint64 `yaml:"max_ticks"`
}

// TelemetryConfig — экспорт трассировок OTLP
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
}

// LoggingConfig — уровень консоли и каталог файловых логов
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию со встроенными значениями
func Default() *Config {
	gen := world.DefaultGeneratorParams()
	sim := world.DefaultSimulationConfig()
	resources := ResourcesConfig{
		Sap:  gen.Resources[world.ResourceSap],
		Bark: gen.Resources[world.ResourceBark],
		Wood: gen.Resources[world.ResourceWood],
	}

	return &Config{
		World: WorldConfig{
			Seed:          1,
			LevelMin:      gen.LevelMin,
			LevelMax:      gen.LevelMax,
			SeedCount:     gen.SeedCount,
			ClusterCount:  gen.ClusterCount,
			TrunkHeight:   gen.TrunkHeight,
			RootingHeight: gen.RootingHeight,
			RootChance:    gen.RootChance,
			RootGrowth:    gen.RootGrowth,
			GroundY:       gen.GroundY,
			GroundLevel:   sim.GroundLevel,
			BushCount:     gen.BushCount,
			MaxRootSteps:  gen.MaxRootSteps,
			NoiseScale:    gen.NoiseScale,
			HeightChances: gen.HeightChances,
			Resources:     resources,
		},
		Gameplay: GameplayConfig{
			MoveSpeed:      sim.Movement.Speed,
			JumpImpulse:    sim.Movement.JumpImpulse,
			GroundProbe:    sim.Movement.GroundProbe,
			Damping:        sim.Damping,
			AttackRange:    sim.AttackRange,
			StrikeDuration: sim.StrikeDuration,
			HitShake:       sim.Damage.HitShake,
			DestroyShake:   sim.Damage.DestroyShake,
			ShakeDecay:     sim.Camera.ShakeDecay,
			Bending:        sim.Camera.Bending,
			BendWorld:      sim.Camera.BendWorld,
			ZoomSpeed:      sim.Camera.ZoomSpeed,
			TickRate:       sim.TickRate,
			PlayerStart:    [3]float32{0, 3, 0},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "rootgrove",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", пытается прочитать из ENV GAME_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if _, err := c.Generator(); err != nil {
		return err
	}
	if c.Gameplay.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if c.Gameplay.Damping <= 0 || c.Gameplay.Damping > 1 {
		return fmt.Errorf("%w: damping must be in (0, 1], got %v", ErrInvalidConfig, c.Gameplay.Damping)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics_port %d", ErrInvalidConfig, c.Server.MetricsPort)
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return fmt.Errorf("%w: telemetry.service_name is required", ErrInvalidConfig)
	}
	if _, ok := parseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// Generator собирает параметры генератора из секции world
func (c *Config) Generator() (world.GeneratorParams, error) {
	w := c.World
	params := world.DefaultGeneratorParams()
	params.LevelMin = w.LevelMin
	params.LevelMax = w.LevelMax
	params.SeedCount = w.SeedCount
	params.ClusterCount = w.ClusterCount
	params.TrunkHeight = w.TrunkHeight
	params.RootingHeight = w.RootingHeight
	params.RootChance = w.RootChance
	params.RootGrowth = w.RootGrowth
	params.GroundY = w.GroundY
	params.BushCount = w.BushCount
	params.MaxRootSteps = w.MaxRootSteps
	params.NoiseSeed = w.Seed
	params.NoiseScale = w.NoiseScale
	if len(w.HeightChances) > 0 {
		params.HeightChances = append([]float64(nil), w.HeightChances...)
	}
	params.Resources = w.Resources.Table()

	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return params, nil
}

// Simulation собирает параметры симуляции
func (c *Config) Simulation() (world.SimulationConfig, error) {
	params, err := c.Generator()
	if err != nil {
		return world.SimulationConfig{}, err
	}

	g := c.Gameplay
	sim := world.DefaultSimulationConfig()
	sim.Generator = params
	sim.GroundLevel = c.World.GroundLevel
	sim.Movement.Speed = g.MoveSpeed
	sim.Movement.JumpImpulse = g.JumpImpulse
	sim.Movement.GroundProbe = g.GroundProbe
	sim.Damping = g.Damping
	sim.AttackRange = g.AttackRange
	sim.StrikeDuration = g.StrikeDuration
	sim.Damage.HitShake = g.HitShake
	sim.Damage.DestroyShake = g.DestroyShake
	sim.Camera.ShakeDecay = g.ShakeDecay
	sim.Camera.Bending = g.Bending
	sim.Camera.BendWorld = g.BendWorld
	sim.Camera.ZoomSpeed = g.ZoomSpeed
	sim.TickRate = g.TickRate
	sim.PlayerStart = mgl32.Vec3(g.PlayerStart)
	return sim, nil
}

// LogLevel возвращает уровень консольного логирования
func (c *Config) LogLevel() logging.LogLevel {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(s string) (logging.LogLevel, bool) {
	switch strings.ToLower(s) {
	case "trace", "debug", "info", "warn", "error":
		return logging.ParseLevel(s), true
	default:
		return logging.INFO, false
	}
}
