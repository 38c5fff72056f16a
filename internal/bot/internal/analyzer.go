package internal

import "klondike/internal/domain"

// BoardStats summarizes a position for move scoring.
type BoardStats struct {
	Hidden       int
	EmptyColumns int
	// Mobility counts legal non-draw moves.
	Mobility        int
	StockCards      int
	FoundationCards int
	// BuriedLow counts aces and twos under face-down cards.
	BuriedLow int
}

// AnalyzeBoard collects BoardStats for state.
func AnalyzeBoard(state domain.GameState) BoardStats {
	stats := BoardStats{
		Hidden:          HiddenCards(state),
		StockCards:      len(state.Draw) + len(state.Discard),
		FoundationCards: state.FoundationCount(),
	}
	for _, pile := range state.Tableau {
		if len(pile) == 0 {
			stats.EmptyColumns++
			continue
		}
		firstUp := len(pile)
		for i, c := range pile {
			if c.Up {
				firstUp = i
				break
			}
		}
		for _, c := range pile[:firstUp] {
			if c.Rank <= domain.Two {
				stats.BuriedLow++
			}
		}
	}
	for _, m := range GetValidMoves(state) {
		if !m.IsDraw() {
			stats.Mobility++
		}
	}
	return stats
}
