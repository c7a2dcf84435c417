package world

import "github.com/go-gl/mathgl/mgl32"

// Key — клавиша, которую опрашивает ядро
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyAttack  // C
	KeyJump    // Space
	KeyZoomIn  // Z
	KeyZoomOut // X
	KeyBend    // Переключение искривления мира
)

// movementKeys — клавиши направления и их векторы
var movementKeys = [...]struct {
	key Key
	dir mgl32.Vec3
}{
	{KeyUp, mgl32.Vec3{0, 0, -1}},
	{KeyDown, mgl32.Vec3{0, 0, 1}},
	{KeyLeft, mgl32.Vec3{-1, 0, 0}},
	{KeyRight, mgl32.Vec3{1, 0, 0}},
}

// Input — состояние клавиш за один тик. JustPressed содержит фронты нажатий.
type Input struct {
	Pressed     map[Key]bool
	JustPressed map[Key]bool
}

// NewInput создаёт пустое состояние ввода
func NewInput() Input {
	return Input{Pressed: map[Key]bool{}, JustPressed: map[Key]bool{}}
}

// Press отмечает клавишу нажатой в этом тике (с фронтом)
func (in Input) Press(k Key) Input {
	in.Pressed[k] = true
	in.JustPressed[k] = true
	return in
}

// Hold отмечает клавишу удерживаемой без фронта
func (in Input) Hold(k Key) Input {
	in.Pressed[k] = true
	return in
}

// IsPressed проверяет удержание клавиши
func (in Input) IsPressed(k Key) bool {
	return in.Pressed[k]
}

// IsJustPressed проверяет фронт нажатия
func (in Input) IsJustPressed(k Key) bool {
	return in.JustPressed[k]
}

// InputSource поставляет ввод на каждый тик
type InputSource interface {
	Poll(tick uint64) Input
}

// ScriptedInput — ввод по сценарию: номер тика → клавиши с фронтом.
// Используется безголовым раннером.
type ScriptedInput struct {
	Script map[uint64][]Key
	Held   []Key // Удерживаются на каждом тике
}

// Poll реализует InputSource
func (s ScriptedInput) Poll(tick uint64) Input {
	in := NewInput()
	for _, k := range s.Held {
		in = in.Hold(k)
	}
	for _, k := range s.Script[tick] {
		in = in.Press(k)
	}
	return in
}
