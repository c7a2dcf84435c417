package eventbus

import (
	"context"
	"errors"
	"sync"
)

// ErrNoGlobalBus — раннер не установил глобальную шину
var ErrNoGlobalBus = errors.New("eventbus: global bus is not set")

// Типы отчётов раннера
const (
	EventGenerationCompleted = "GenerationCompleted"
	EventShutdownReport      = "ShutdownReport"
)

// reportPriority не даёт отчётам раннера теряться при заполненном буфере
const reportPriority = 7

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// Init устанавливает глобальную шину для отчётов раннера; nil её снимает.
// Системы мира получают шину явно через конструктор.
func Init(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// Global возвращает глобальную шину или nil
func Global() EventBus {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalBus
}

// Publish отправляет событие в глобальную шину
func Publish(ctx context.Context, ev *Envelope) error {
	bus := Global()
	if bus == nil {
		return ErrNoGlobalBus
	}
	return bus.Publish(ctx, ev)
}

// PublishReport собирает отчёт раннера из полей и публикует его глобально
func PublishReport(ctx context.Context, source, eventType string, fields map[string]any) error {
	ev, err := NewEnvelope(source, eventType, reportPriority, fields)
	if err != nil {
		return err
	}
	return Publish(ctx, ev)
}
