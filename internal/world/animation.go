package world

// DefaultStrikeDuration — длительность кадра удара, секунды
const DefaultStrikeDuration float32 = 0.2

// AnimEvent — смена спрайта игрока: ходьба или удар
type AnimEvent struct {
	Direction CardinalDirection
	Strike    bool
}

// Спрайты влево/вправо в наборе ассетов перепутаны местами,
// поэтому Left берёт right.png и наоборот.
var (
	walkSprites = map[CardinalDirection]string{
		DirLeft:  "right.png",
		DirRight: "left.png",
		DirUp:    "up.png",
		DirDown:  "down.png",
	}
	strikeSprites = map[CardinalDirection]string{
		DirLeft:  "right_s.png",
		DirRight: "left_s.png",
		DirUp:    "up_s.png",
		DirDown:  "down_s.png",
	}
)

// WalkSprite возвращает спрайт ходьбы для направления
func WalkSprite(d CardinalDirection) string {
	return walkSprites[d]
}

// StrikeSprite возвращает спрайт удара для направления
func StrikeSprite(d CardinalDirection) string {
	return strikeSprites[d]
}

// AnimationSystem переключает спрайты игрока и отсчитывает таймер удара
type AnimationSystem struct {
	strikeDuration float32
}

// NewAnimationSystem создаёт систему анимации
func NewAnimationSystem(strikeDuration float32) *AnimationSystem {
	return &AnimationSystem{strikeDuration: strikeDuration}
}

// Tick применяет события анимации, затем отсчитывает таймер удара.
// По истечении таймера возвращается спрайт ходьбы последнего направления.
func (s *AnimationSystem) Tick(p *Player, events []AnimEvent, dt float32) {
	for _, ev := range events {
		if ev.Strike {
			p.StrikeTimer = s.strikeDuration
			p.Sprite = StrikeSprite(ev.Direction)
			continue
		}
		p.Sprite = WalkSprite(ev.Direction)
	}

	if p.StrikeTimer > 0 {
		p.StrikeTimer -= dt
		if p.StrikeTimer <= 0 {
			p.StrikeTimer = 0
			p.Sprite = WalkSprite(p.LastDirection)
		}
	}
}
