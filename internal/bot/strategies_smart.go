package bot

import (
	"sort"

	"klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// SmartBot scores the position after every legal move with phase weights.
type SmartBot struct {
	// Tuning overrides DefaultTuning when set.
	Tuning *internal.BotTuning
}

func (b *SmartBot) tuning() internal.BotTuning {
	if b.Tuning != nil {
		return *b.Tuning
	}
	return DefaultTuning
}

func (b *SmartBot) CalculateMove(state domain.GameState) (Move, error) {
	validMoves := internal.GetValidMoves(state)
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	tuning := b.tuning()
	weights := tuning.ForPhase(internal.DetectPhase(state))
	scored := internal.BuildScoredMoves(state, validMoves, weights)
	sortScored(scored)

	currentScore := internal.ScoreState(state, weights)
	if scored[0].Score < currentScore+tuning.PassThreshold {
		return Move{Pass: true}, nil
	}

	return Move{Play: scored[0].Move.Move}, nil
}

// sortScored orders moves best first. Ties keep generator order, which lists
// foundation plays before tableau plays before the draw.
func sortScored(scored []internal.ScoredMove) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}
