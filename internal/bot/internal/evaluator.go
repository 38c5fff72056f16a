package internal

import "klondike/internal/domain"

const (
	ScoreFoundationCard = 10.0
	ScoreHiddenCard     = -6.0
	ScoreEmptyColumn    = 4.0
	ScoreMobility       = 0.5
	ScoreStockCard      = -0.3
	ScoreBuriedLow      = -3.0
	ScoreWon            = 10000.0
)

// EvaluateState returns a heuristic score for a position. Higher is better.
func EvaluateState(state domain.GameState) float64 {
	if state.IsWon() {
		return ScoreWon
	}
	stats := AnalyzeBoard(state)
	score := 0.0
	score += ScoreFoundationCard * float64(stats.FoundationCards)
	score += ScoreHiddenCard * float64(stats.Hidden)
	score += ScoreEmptyColumn * float64(stats.EmptyColumns)
	score += ScoreMobility * float64(stats.Mobility)
	score += ScoreStockCard * float64(stats.StockCards)
	score += ScoreBuriedLow * float64(stats.BuriedLow)
	return score
}
