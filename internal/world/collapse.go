package world

import (
	"errors"

	"github.com/annel0/rootgrove/internal/logging"
)

// DefaultGroundLevel — нижний уровень, ниже которого блоки не падают
const DefaultGroundLevel = 0

// CollapseSystem опускает блоки на клетку вниз, если под ними пусто
type CollapseSystem struct {
	groundLevel int
	blocks      *BlockMap
	roots       *RootStore
	renderer    Renderer
	metrics     *Metrics
	logger      *logging.Logger
}

// NewCollapseSystem создаёт систему обрушения
func NewCollapseSystem(groundLevel int, blocks *BlockMap, roots *RootStore, renderer Renderer, metrics *Metrics) *CollapseSystem {
	return &CollapseSystem{
		groundLevel: groundLevel,
		blocks:      blocks,
		roots:       roots,
		renderer:    renderer,
		metrics:     metrics,
		logger:      logging.GetWorldLogger(),
	}
}

// Tick сдвигает каждый живой блок выше уровня земли не более чем на одну клетку.
// Блоки обходятся снизу вверх, так что колонна над пустотой опускается целиком.
// Возвращает число перемещённых блоков.
func (s *CollapseSystem) Tick() int {
	moved := 0
	for _, block := range s.roots.ByHeight() {
		if !block.Alive() || block.Position.Y <= s.groundLevel {
			continue
		}
		old := block.Position
		below := old.Below()
		if s.blocks.Contains(below) {
			continue
		}

		if err := s.blocks.Relocate(old, below); err != nil {
			// Диагностика уже записана картой; блок остаётся на месте
			if !errors.Is(err, ErrMissingEntry) && !errors.Is(err, ErrTargetOccupied) {
				s.logger.Error("обрушение блока %d: %v", block.ID, err)
			}
			continue
		}
		block.Position = below
		if s.renderer != nil {
			s.renderer.SetPosition(block.ID, below.ToWorld())
		}
		moved++
	}
	s.metrics.CollapseMoves(moved)
	return moved
}
