package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Параметры камеры по умолчанию
const (
	DefaultShakeIntensity float32 = 10.0
	DefaultShakeDecay     float32 = 10.0
	DefaultBending        float32 = 0.015
	DefaultZoomSpeed      float32 = 5.0
)

// DefaultCameraOffset — смещение камеры от игрока
var DefaultCameraOffset = mgl32.Vec3{0, 11, 15}

// CameraConfig — параметры камеры
type CameraConfig struct {
	Offset         mgl32.Vec3
	ShakeIntensity float32 // Начальная тряска
	ShakeDecay     float32
	Bending        float32
	ZoomSpeed      float32
	BendWorld      bool
}

// DefaultCameraConfig возвращает параметры камеры по умолчанию
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Offset:         DefaultCameraOffset,
		ShakeIntensity: DefaultShakeIntensity,
		ShakeDecay:     DefaultShakeDecay,
		Bending:        DefaultBending,
		ZoomSpeed:      DefaultZoomSpeed,
		BendWorld:      true,
	}
}

// Uniforms — данные для шейдера искривления мира. Только наблюдение,
// обратной связи в ядро нет.
type Uniforms struct {
	Time           float32
	CameraPosition mgl32.Vec3
	PlayerPosition mgl32.Vec3
	Bend           float32
}

// Camera следит за игроком с тряской, которая затухает со временем
type Camera struct {
	mu        sync.Mutex
	cfg       CameraConfig
	offset    mgl32.Vec3
	shake     float32
	bendWorld bool
	position  mgl32.Vec3
	target    mgl32.Vec3
	elapsed   float32
	rng       Rand
}

// NewCamera создаёт камеру. rng задаёт направление тряски.
func NewCamera(cfg CameraConfig, rng Rand) *Camera {
	return &Camera{
		cfg:       cfg,
		offset:    cfg.Offset,
		shake:     cfg.ShakeIntensity,
		bendWorld: cfg.BendWorld,
		rng:       rng,
	}
}

// AddShake реализует Shake
func (c *Camera) AddShake(amount float32) {
	c.mu.Lock()
	c.shake += amount
	c.mu.Unlock()
}

// ShakeIntensity возвращает текущую интенсивность тряски
func (c *Camera) ShakeIntensity() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shake
}

// Offset возвращает текущее смещение камеры
func (c *Camera) Offset() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Position возвращает позицию камеры после последнего тика
func (c *Camera) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Tick ставит камеру над центром с тряской, применяет зум и затухание тряски
func (c *Camera) Tick(in Input, center mgl32.Vec3, dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsed += dt
	c.target = center
	c.position = center.Add(c.offset).Add(c.randomUnit().Mul(c.shake))

	if view := center.Sub(c.position); view.Len() > 0 {
		dir := view.Normalize()
		if in.IsPressed(KeyZoomIn) {
			c.offset = c.offset.Add(dir.Mul(c.cfg.ZoomSpeed * dt))
		}
		if in.IsPressed(KeyZoomOut) {
			c.offset = c.offset.Sub(dir.Mul(c.cfg.ZoomSpeed * dt))
		}
	}
	if in.IsJustPressed(KeyBend) {
		c.bendWorld = !c.bendWorld
	}

	c.shake -= c.shake * c.cfg.ShakeDecay * dt
	if c.shake < 0 {
		c.shake = 0
	}
}

// ShaderUniforms возвращает данные для шейдера
func (c *Camera) ShaderUniforms() Uniforms {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := Uniforms{
		Time:           c.elapsed,
		CameraPosition: c.position,
		PlayerPosition: c.target,
	}
	if c.bendWorld {
		u.Bend = c.cfg.Bending
	}
	return u
}

// randomUnit — случайное направление в кубе [-1, 1], нормализованное
func (c *Camera) randomUnit() mgl32.Vec3 {
	if c.rng == nil || c.shake == 0 {
		return mgl32.Vec3{}
	}
	v := mgl32.Vec3{
		float32(c.rng.Float64()*2 - 1),
		float32(c.rng.Float64()*2 - 1),
		float32(c.rng.Float64()*2 - 1),
	}
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
