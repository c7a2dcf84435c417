package logging

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Компоненты ядра, у которых есть собственный логгер
const (
	ComponentWorld    = "world"
	ComponentWorldgen = "worldgen"
	ComponentSim      = "sim"
)

// LoggerManager раздаёт логгеры компонентов и применяет к ним общие настройки:
// вывод, уровень консоли и каталог файловых логов.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	output  io.Writer
	level   LogLevel
	dir     string
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// NewLoggerManager создаёт менеджер с уровнем INFO и выводом в консоль
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger), level: INFO}
}

// Configure задаёт уровень консоли и каталог файлов для всех текущих
// и будущих логгеров. Пустой dir отключает файловый вывод у новых логгеров.
func (lm *LoggerManager) Configure(level LogLevel, dir string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.level = level
	lm.dir = dir
	for component, logger := range lm.loggers {
		if err := lm.apply(logger); err != nil {
			return fmt.Errorf("configure logger %s: %w", component, err)
		}
	}
	return nil
}

// apply переносит настройки менеджера на логгер. Вызывается под lm.mu.
func (lm *LoggerManager) apply(logger *Logger) error {
	if lm.output != nil {
		logger.SetOutput(lm.output)
	}
	logger.SetLevels(lm.level, DEBUG)
	if lm.dir != "" {
		return logger.EnableFile(lm.dir)
	}
	return nil
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()
	if exists {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}
	if err := lm.apply(logger); err != nil {
		return nil, fmt.Errorf("failed to configure logger for %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер или глобальный логгер при ошибке
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		return defaultLogger
	}
	return logger
}

// SetOutput перенаправляет вывод всех текущих и будущих логгеров компонентов
func (lm *LoggerManager) SetOutput(w io.Writer) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.output = w
	for _, logger := range lm.loggers {
		logger.SetOutput(w)
	}
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// ListComponents возвращает отсортированный список зарегистрированных компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel устанавливает уровень логирования для одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()

	if !exists {
		return fmt.Errorf("logger for component %s not found", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// GetComponentLogger — короткий доступ к логгеру компонента
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

// GetWorldLogger — карта занятости, обрушение и добыча
func GetWorldLogger() *Logger { return GetComponentLogger(ComponentWorld) }

// GetWorldgenLogger — генератор мира
func GetWorldgenLogger() *Logger { return GetComponentLogger(ComponentWorldgen) }

// GetSimLogger — планировщик тиков
func GetSimLogger() *Logger { return GetComponentLogger(ComponentSim) }
