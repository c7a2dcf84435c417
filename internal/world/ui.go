package world

import "fmt"

// FormatCounters формирует текст счётчиков ресурсов для UI
func FormatCounters(sap, bark, wood int) string {
	return fmt.Sprintf("Sap: %d\nBark: %d\nWood:%d", sap, bark, wood)
}

// CountersText — текст счётчиков игрока
func (p *Player) CountersText() string {
	return FormatCounters(p.Sap, p.Bark, p.Wood)
}
