package world

import (
	"context"
	"strconv"

	"github.com/annel0/rootgrove/internal/eventbus"
	"github.com/annel0/rootgrove/internal/logging"
)

// Типы наблюдаемых событий добычи. На них подписываются звук, тряска камеры и UI.
const (
	EventBlockDamaged   = "BlockDamaged"
	EventBlockDestroyed = "BlockDestroyed"

	eventSource = "world"
)

// Приоритеты событий в шине
const (
	priorityDamaged   = 3
	priorityDestroyed = 6
)

// BlockEvent — наблюдаемое событие урона или разрушения блока
type BlockEvent struct {
	Type     string
	Tick     uint64
	Block    EntityID
	Attacker EntityID
	Resource ResourceKind
	Health   int
	Yield    int // Только для разрушения
	Position [3]int
}

func (e BlockEvent) fields() map[string]any {
	return map[string]any{
		"block":    float64(e.Block),
		"attacker": float64(e.Attacker),
		"resource": e.Resource.String(),
		"sound":    e.Resource.SoundAsset(),
		"health":   float64(e.Health),
		"yield":    float64(e.Yield),
		"x":        float64(e.Position[0]),
		"y":        float64(e.Position[1]),
		"z":        float64(e.Position[2]),
	}
}

// EventPublisher публикует события добычи в шину. Нулевая шина — события отбрасываются.
type EventPublisher struct {
	bus    eventbus.EventBus
	logger *logging.Logger
}

// NewEventPublisher создаёт публикатор
func NewEventPublisher(bus eventbus.EventBus) *EventPublisher {
	return &EventPublisher{bus: bus, logger: logging.GetWorldLogger()}
}

// Publish отправляет событие. Ошибка шины не прерывает тик, только пишется в лог.
func (p *EventPublisher) Publish(ctx context.Context, ev BlockEvent) {
	if p == nil || p.bus == nil {
		return
	}
	prio := priorityDamaged
	if ev.Type == EventBlockDestroyed {
		prio = priorityDestroyed
	}
	env, err := eventbus.NewEnvelope(eventSource, ev.Type, prio, ev.fields())
	if err != nil {
		p.logger.Warn("событие %s для блока %d не сериализовано: %v", ev.Type, ev.Block, err)
		return
	}
	env.CorrelationID = strconv.FormatUint(ev.Tick, 10)
	if err := p.bus.Publish(ctx, env); err != nil {
		p.logger.Warn("событие %s для блока %d не опубликовано: %v", ev.Type, ev.Block, err)
	}
}
