package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/rootgrove/internal/config"
	"github.com/annel0/rootgrove/internal/diagnostics"
	"github.com/annel0/rootgrove/internal/eventbus"
	"github.com/annel0/rootgrove/internal/logging"
	"github.com/annel0/rootgrove/internal/observability"
	"github.com/annel0/rootgrove/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// demoScript — сценарий безголового игрока: идёт влево и периодически бьёт
func demoScript(maxTicks uint64) world.ScriptedInput {
	script := make(map[uint64][]world.Key)
	for tick := uint64(30); tick <= maxTicks; tick += 30 {
		script[tick] = []world.Key{world.KeyAttack}
	}
	for tick := uint64(90); tick <= maxTicks; tick += 240 {
		script[tick] = append(script[tick], world.KeyJump)
	}
	return world.ScriptedInput{Script: script, Held: []world.Key{world.KeyLeft}}
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: $GAME_CONFIG)")
	seed := flag.Int64("seed", 0, "World seed override (0 keeps config value)")
	ticks := flag.Uint64("ticks", 0, "Tick limit override (0 keeps config value)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *ticks != 0 {
		cfg.Server.MaxTicks = *ticks
	}

	if err := logging.InitDefaultLogger("server", cfg.LogLevel(), cfg.Logging.Dir); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	if err := logging.GetLoggerManager().Configure(cfg.LogLevel(), cfg.Logging.Dir); err != nil {
		log.Fatalf("❌ Ошибка настройки логгеров компонентов: %v", err)
	}
	defer logging.GetLoggerManager().CloseAll()

	simCfg, err := cfg.Simulation()
	if err != nil {
		log.Fatalf("❌ Некорректная конфигурация мира: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := observability.Shutdown(observability.Noop)
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
		})
		if err != nil {
			logging.Warn("Телеметрия отключена: %v", err)
			shutdownTelemetry = observability.Noop
		}
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := world.NewMetrics(registry)

	bus := eventbus.NewMemoryBus(1024)
	eventbus.Init(bus)
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Не удалось подписать логгер событий: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, registry)
	exporter.Start(5 * time.Second)

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	metricsServer := eventbus.ServeHTTP(metricsAddr, registry)

	// === МИР ===
	engine := world.NewMemoryEngine()
	sim, err := world.NewSimulation(simCfg, world.SimulationDeps{
		Engine:  engine,
		Rand:    rand.New(rand.NewSource(cfg.World.Seed)),
		Bus:     bus,
		Metrics: metrics,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания симуляции: %v", err)
	}

	monitor := diagnostics.NewMonitor()
	report, err := sim.Generate(ctx)
	if err != nil {
		log.Fatalf("❌ Ошибка генерации мира: %v", err)
	}
	logging.Info("🌳 Мир создан: seed=%d, стволов=%d, блоков=%d, кустов=%d за %v",
		cfg.World.Seed, report.Seeds, report.Blocks, report.Bushes, report.Duration)
	logging.Info("🩺 %s", monitor.Collect(resourceCounts(sim.Roots())))
	publishReport(ctx, eventbus.EventGenerationCompleted, map[string]any{
		"seed":        cfg.World.Seed,
		"seeds":       report.Seeds,
		"skipped":     report.Skipped,
		"blocks":      report.Blocks,
		"bushes":      report.Bushes,
		"duration_ms": report.Duration.Milliseconds(),
	})

	logging.Info("▶️  Симуляция запущена: тик %v, лимит %d (0 — до сигнала)",
		simCfg.TickRate, cfg.Server.MaxTicks)
	done := sim.Run(ctx, demoScript(cfg.Server.MaxTicks), cfg.Server.MaxTicks)

	p := sim.Player()
	logging.Info("⏹️  Выполнено тиков: %d, позиция игрока %v", done, p.Position)
	logging.Info("🎒 %s", p.CountersText())
	diag := monitor.Collect(resourceCounts(sim.Roots()))
	logging.Info("🩺 %s", diag)

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publishReport(shutdownCtx, eventbus.EventShutdownReport, map[string]any{
		"ticks":       done,
		"sap":         p.Sap,
		"bark":        p.Bark,
		"wood":        p.Wood,
		"diagnostics": diag.String(),
	})

	exporter.Stop()
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка остановки шины событий: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// publishReport отправляет отчёт раннера; ошибка шины не останавливает сервер
func publishReport(ctx context.Context, eventType string, fields map[string]any) {
	if err := eventbus.PublishReport(ctx, "server", eventType, fields); err != nil {
		logging.Warn("Отчёт %s не опубликован: %v", eventType, err)
	}
}

func resourceCounts(roots *world.RootStore) map[string]int {
	counts := make(map[string]int, len(world.AllResourceKinds))
	for kind, n := range roots.CountByResource() {
		counts[kind.String()] = n
	}
	return counts
}
