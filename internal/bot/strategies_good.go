package bot

import (
	"klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// GoodBot narrows the legal moves with a fixed rule pipeline and plays the
// first survivor.
type GoodBot struct {
	Rules []SelectionRule
}

func (b *GoodBot) CalculateMove(state domain.GameState) (Move, error) {
	validMoves := internal.GetValidMoves(state)
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	rules := b.Rules
	if rules == nil {
		rules = DefaultRules
	}
	ctx := &SelectionContext{State: state, Candidates: validMoves}
	for _, rule := range rules {
		rule.Apply(ctx)
	}

	return Move{Play: ctx.Candidates[0].Move}, nil
}
