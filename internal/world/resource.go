package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ResourceKind — вид ресурса корня. Множество закрыто: Sap, Bark, Wood.
type ResourceKind uint8

const (
	ResourceSap ResourceKind = iota
	ResourceBark
	ResourceWood

	resourceKindCount = 3
)

// ErrMissingMaterial — для вида ресурса не зарегистрирован материал (ошибка конфигурации)
var ErrMissingMaterial = errors.New("no material registered for resource kind")

// AllResourceKinds перечисляет виды ресурсов в порядке индексов таблиц
var AllResourceKinds = [resourceKindCount]ResourceKind{ResourceSap, ResourceBark, ResourceWood}

// String возвращает имя вида ресурса
func (k ResourceKind) String() string {
	switch k {
	case ResourceSap:
		return "sap"
	case ResourceBark:
		return "bark"
	case ResourceWood:
		return "wood"
	default:
		return fmt.Sprintf("resource(%d)", uint8(k))
	}
}

// Valid проверяет, что значение входит в закрытое множество
func (k ResourceKind) Valid() bool {
	return k < resourceKindCount
}

// MineOnTouch — мягкие корни сока повреждаются простым касанием
func (k ResourceKind) MineOnTouch() bool {
	return k == ResourceSap
}

// Downgrade возвращает следующий по твёрдости вид и новые параметры роста.
// Sap→Wood (0, 0.2), Wood→Bark (0.2, 0.7). Bark конечен: ok == false.
func (k ResourceKind) Downgrade() (next ResourceKind, chance, growth float64, ok bool) {
	switch k {
	case ResourceSap:
		return ResourceWood, 0, 0.2, true
	case ResourceWood:
		return ResourceBark, 0.2, 0.7, true
	default:
		return k, 0, 0, false
	}
}

// SoundAsset — звук удара по блоку данного вида (для аудио-подписчика)
func (k ResourceKind) SoundAsset() string {
	switch k {
	case ResourceSap:
		return "SapFast.ogg"
	case ResourceBark:
		return "Bark.ogg"
	default:
		return "Wood.ogg"
	}
}

// YieldRange — включительный диапазон добычи
type YieldRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ResourceInfo описывает вид ресурса: базовое здоровье и диапазон добычи
type ResourceInfo struct {
	BaseHealth int        `yaml:"base_health"`
	Yield      YieldRange `yaml:"yield"`
}

// ResourceTable индексируется видом ресурса
type ResourceTable [resourceKindCount]ResourceInfo

// DefaultResourceTable: Sap=1, Bark=2, Wood=4, добыча 1–5
func DefaultResourceTable() ResourceTable {
	return ResourceTable{
		ResourceSap:  {BaseHealth: 1, Yield: YieldRange{Min: 1, Max: 5}},
		ResourceBark: {BaseHealth: 2, Yield: YieldRange{Min: 1, Max: 5}},
		ResourceWood: {BaseHealth: 4, Yield: YieldRange{Min: 1, Max: 5}},
	}
}

// Validate проверяет таблицу ресурсов
func (t ResourceTable) Validate() error {
	for _, kind := range AllResourceKinds {
		info := t[kind]
		if info.BaseHealth <= 0 {
			return fmt.Errorf("resource %s: base health must be positive, got %d", kind, info.BaseHealth)
		}
		if info.Yield.Min < 0 || info.Yield.Max < info.Yield.Min {
			return fmt.Errorf("resource %s: invalid yield range [%d, %d]", kind, info.Yield.Min, info.Yield.Max)
		}
		if info.Yield.Max == 0 {
			return fmt.Errorf("resource %s: yield max must be positive", kind)
		}
	}
	return nil
}

// MaterialSpec описывает визуальный материал для движка рендеринга
type MaterialSpec struct {
	Name    string
	Texture string
	Color   mgl32.Vec3
}

// DefaultMaterialSpecs — материалы корней. Сок светится (цвет > 1 для bloom).
func DefaultMaterialSpecs() map[ResourceKind]MaterialSpec {
	return map[ResourceKind]MaterialSpec{
		ResourceSap:  {Name: "sap", Texture: "sap.png", Color: mgl32.Vec3{1, 1, 10}},
		ResourceBark: {Name: "bark", Texture: "bark.png", Color: mgl32.Vec3{1, 1, 1}},
		ResourceWood: {Name: "wood", Texture: "wood.png", Color: mgl32.Vec3{1, 1, 1}},
	}
}

// MaterialTable — таблица материалов фиксированного размера по виду ресурса.
// Строится один раз в начале генерации.
type MaterialTable [resourceKindCount]MaterialHandle

// ResolveMaterials строит таблицу. Отсутствующий материал — ошибка конфигурации.
func ResolveMaterials(materials map[ResourceKind]MaterialHandle) (MaterialTable, error) {
	var table MaterialTable
	for _, kind := range AllResourceKinds {
		handle, ok := materials[kind]
		if !ok || handle == NoMaterial {
			return table, fmt.Errorf("%w: %s", ErrMissingMaterial, kind)
		}
		table[kind] = handle
	}
	return table, nil
}

// For возвращает материал для вида ресурса
func (t MaterialTable) For(kind ResourceKind) MaterialHandle {
	return t[kind]
}
