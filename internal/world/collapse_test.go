package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/rootgrove/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseSystem_FallsUntilSupported(t *testing.T) {
	w := newTestWorld(t, smallParams(-5, 5), constRand{})
	upper := w.placeBlock(vec.New(0, 5, 0), ResourceWood, 4, 1)
	lower := w.placeBlock(vec.New(0, 0, 0), ResourceWood, 4, 1)
	cs := NewCollapseSystem(DefaultGroundLevel, w.blocks, w.roots, w.engine, nil)

	for want := 4; want >= 1; want-- {
		moved := cs.Tick()
		assert.Equal(t, 1, moved, "за тик падает только верхний блок")
		assert.Equal(t, want, upper.Position.Y, "блок опускается на одну клетку")
		assert.True(t, w.blocks.Contains(vec.New(0, want, 0)))
		assert.False(t, w.blocks.Contains(vec.New(0, want+1, 0)))

		pos, ok := w.engine.Position(upper.ID)
		require.True(t, ok)
		assert.Equal(t, mgl32.Vec3{0, float32(want), 0}, pos, "отрисованная позиция следует за блоком")
	}

	assert.Zero(t, cs.Tick(), "блок лёг на нижний и больше не падает")
	assert.Equal(t, 1, upper.Position.Y)
	assert.Equal(t, 0, lower.Position.Y, "блок на уровне земли не падает")
	assertIndexConsistent(t, w.blocks, w.roots)
}

func TestCollapseSystem_ColumnFallsTogether(t *testing.T) {
	w := newTestWorld(t, smallParams(-5, 5), constRand{})
	var column []*RootBlock
	for y := 3; y <= 6; y++ {
		column = append(column, w.placeBlock(vec.New(2, y, 2), ResourceSap, 1, 1))
	}
	cs := NewCollapseSystem(DefaultGroundLevel, w.blocks, w.roots, w.engine, nil)

	assert.Equal(t, 4, cs.Tick())
	for i, b := range column {
		assert.Equal(t, 2+i, b.Position.Y, "каждый блок сдвинулся ровно на одну клетку")
	}
}

func TestCollapseSystem_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	w := newTestWorld(t, smallParams(-3, 3), constRand{})
	for i := 0; i < 60; i++ {
		pos := vec.New(rng.Intn(7)-3, rng.Intn(10), rng.Intn(7)-3)
		if !w.blocks.Contains(pos) {
			w.placeBlock(pos, ResourceBark, 2, 1)
		}
	}
	cs := NewCollapseSystem(DefaultGroundLevel, w.blocks, w.roots, w.engine, nil)
	total := w.blocks.Len()

	for tick := 0; tick < 15; tick++ {
		before := map[EntityID]int{}
		for _, b := range w.roots.All() {
			before[b.ID] = b.Position.Y
		}
		cs.Tick()
		assert.Equal(t, total, w.blocks.Len(), "обрушение не создаёт и не удаляет записи")
		for _, b := range w.roots.All() {
			d := before[b.ID] - b.Position.Y
			assert.True(t, d == 0 || d == 1, "смещение за тик не больше одной клетки вниз")
			assert.GreaterOrEqual(t, b.Position.Y, DefaultGroundLevel)
		}
		assertIndexConsistent(t, w.blocks, w.roots)
	}
}

func TestCollapseSystem_MissingEntryIsSkipped(t *testing.T) {
	w := newTestWorld(t, smallParams(-5, 5), constRand{})
	ghost := w.placeBlock(vec.New(1, 4, 1), ResourceWood, 4, 1)
	other := w.placeBlock(vec.New(-1, 3, -1), ResourceWood, 4, 1)
	// Блок считает, что стоит в клетке, которой карта не знает
	w.blocks.Remove(ghost.Position)

	cs := NewCollapseSystem(DefaultGroundLevel, w.blocks, w.roots, w.engine, nil)
	var moved int
	assert.NotPanics(t, func() { moved = cs.Tick() })
	assert.Equal(t, 1, moved, "остальные блоки тика обрабатываются")
	assert.Equal(t, 4, ghost.Position.Y, "блок без записи остаётся на месте")
	assert.Equal(t, 2, other.Position.Y)
	assert.False(t, w.blocks.Contains(vec.New(1, 3, 1)), "запись не появляется из ниоткуда")
}

func TestCollapseSystem_SkipsDestroyed(t *testing.T) {
	w := newTestWorld(t, smallParams(-5, 5), constRand{})
	b := w.placeBlock(vec.New(0, 3, 0), ResourceSap, 1, 1)
	b.State = BlockDestroyed

	cs := NewCollapseSystem(DefaultGroundLevel, w.blocks, w.roots, w.engine, nil)
	assert.Zero(t, cs.Tick())
	assert.Equal(t, 3, b.Position.Y)
}
