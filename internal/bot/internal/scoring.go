package internal

import "klondike/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	FoundationWeight  float64
	HiddenWeight      float64
	EmptyColumnWeight float64
	MobilityWeight    float64
	StockWeight       float64
	BuriedLowWeight   float64
	RevealBonus       float64
	DrawPenalty       float64
	// RetreatPenalty applies to cards taken back off a foundation.
	RetreatPenalty float64
	FinishBonus    float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening PhaseWeights
	Mid     PhaseWeights
	End     PhaseWeights
	// PassThreshold is how far below the current position the best move may
	// score before the bot prefers to report no useful move.
	PassThreshold float64
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove holds a move with its computed score and supporting metadata.
type ScoredMove struct {
	Move  ValidMove
	Score float64
	Stats BoardStats
}

// ScoreState evaluates a position using the configured weights.
func ScoreState(state domain.GameState, weights PhaseWeights) float64 {
	return scoreWithStats(AnalyzeBoard(state), weights)
}

// BuildScoredMoves scores the position each move leads to.
func BuildScoredMoves(state domain.GameState, moves []ValidMove, weights PhaseWeights) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		next := move.Next.State
		stats := AnalyzeBoard(next)
		score := scoreWithStats(stats, weights)

		if next.IsWon() {
			score += weights.FinishBonus
		}
		if move.Reveals(state) {
			score += weights.RevealBonus
		}
		if move.IsDraw() {
			score -= weights.DrawPenalty
		}
		if move.Move.Src.IsFoundation() {
			score -= weights.RetreatPenalty
		}

		scored = append(scored, ScoredMove{
			Move:  move,
			Score: score,
			Stats: stats,
		})
	}
	return scored
}

func scoreWithStats(stats BoardStats, weights PhaseWeights) float64 {
	score := 0.0
	score += weights.FoundationWeight * float64(stats.FoundationCards)
	score += weights.HiddenWeight * float64(stats.Hidden)
	score += weights.EmptyColumnWeight * float64(stats.EmptyColumns)
	score += weights.MobilityWeight * float64(stats.Mobility)
	score += weights.StockWeight * float64(stats.StockCards)
	score += weights.BuriedLowWeight * float64(stats.BuriedLow)
	return score
}
