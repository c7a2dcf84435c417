package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_MatchesWorldDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	params, err := cfg.Generator()
	require.NoError(t, err)
	def := world.DefaultGeneratorParams()
	assert.Equal(t, def.LevelMin, params.LevelMin)
	assert.Equal(t, def.LevelMax, params.LevelMax)
	assert.Equal(t, def.SeedCount, params.SeedCount)
	assert.Equal(t, def.Resources, params.Resources)
	assert.Equal(t, def.HeightChances, params.HeightChances)
	assert.Equal(t, logging.INFO, cfg.LogLevel())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("GAME_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
world:
  seed: 42
  level_min: -20
  level_max: 20
  seed_count: 7
  resources:
    wood:
      base_health: 6
      yield: {min: 2, max: 3}
gameplay:
  move_speed: 12.5
  tick_rate: 10ms
  player_start: [1, 2, 3]
  bend_world: false
server:
  metrics_port: 9100
  max_ticks: 600
logging:
  level: debug
`)
	t.Setenv("GAME_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err, "путь берётся из GAME_CONFIG")

	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 9100, cfg.Server.GetMetricsPort())
	assert.Equal(t, uint64(600), cfg.Server.MaxTicks)
	assert.Equal(t, logging.DEBUG, cfg.LogLevel())

	sim, err := cfg.Simulation()
	require.NoError(t, err)
	assert.Equal(t, -20, sim.Generator.LevelMin)
	assert.Equal(t, 7, sim.Generator.SeedCount)
	assert.Equal(t, int64(42), sim.Generator.NoiseSeed)
	assert.Equal(t, 6, sim.Generator.Resources[world.ResourceWood].BaseHealth)
	assert.Equal(t, 1, sim.Generator.Resources[world.ResourceSap].BaseHealth, "остальные ресурсы не тронуты")
	assert.Equal(t, float32(12.5), sim.Movement.Speed)
	assert.Equal(t, 10*time.Millisecond, sim.TickRate)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, sim.PlayerStart)
	assert.False(t, sim.Camera.BendWorld)
	assert.Equal(t, world.DefaultTrunkHeight, sim.Generator.TrunkHeight, "отсутствующие поля сохраняют значения по умолчанию")
}

func TestLoad_PartialResourceKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "world: {resources: {wood: {base_health: 6}, sap: {yield: {max: 2}}}}"))
	require.NoError(t, err)

	params, err := cfg.Generator()
	require.NoError(t, err)
	wood := params.Resources[world.ResourceWood]
	assert.Equal(t, 6, wood.BaseHealth)
	assert.Equal(t, world.YieldRange{Min: 1, Max: 5}, wood.Yield, "добыча древесины не задана и остаётся по умолчанию")

	sap := params.Resources[world.ResourceSap]
	assert.Equal(t, 1, sap.BaseHealth, "здоровье сока не задано")
	assert.Equal(t, world.YieldRange{Min: 1, Max: 2}, sap.Yield, "min сохраняется при частичной записи диапазона")
	assert.Equal(t, world.DefaultResourceTable()[world.ResourceBark], params.Resources[world.ResourceBark])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "world: [not, a, map]"))
	assert.Error(t, err)

	tests := map[string]string{
		"границы":       "world: {level_min: 5, level_max: -5}",
		"здоровье":      "world: {resources: {sap: {base_health: 0}}}",
		"добыча":        "world: {resources: {bark: {yield: {min: 0, max: 0}}}}",
		"тик":           "gameplay: {tick_rate: 0s}",
		"затухание":     "gameplay: {damping: 2}",
		"порт":          "server: {metrics_port: 70000}",
		"уровень логов": "logging: {level: loud}",
		"имя сервиса":   "telemetry: {enabled: true, service_name: \"\"}",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestGetMetricsPort_EnvFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("GAME_METRICS_PORT", "")
	assert.Equal(t, 2112, s.GetMetricsPort())

	t.Setenv("GAME_METRICS_PORT", "9200")
	assert.Equal(t, 9200, s.GetMetricsPort())

	t.Setenv("GAME_METRICS_PORT", "abc")
	assert.Equal(t, 2112, s.GetMetricsPort(), "некорректное значение окружения игнорируется")

	s.MetricsPort = 9300
	assert.Equal(t, 9300, s.GetMetricsPort(), "значение из файла важнее окружения")
}
