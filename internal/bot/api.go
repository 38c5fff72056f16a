package bot

import (
	"klondike/internal/domain"
)

// Move represents the decision made by the AI. Pass means no move is worth
// playing from the position.
type Move struct {
	Pass bool
	Play domain.Move
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(state domain.GameState) (Move, error)
}
