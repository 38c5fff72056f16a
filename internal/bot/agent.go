package bot

import (
	"klondike/internal/bot/brain"
	"klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// Agent plays a game out on its own with one strategy.
type Agent struct {
	Strategy Brain
}

// Step is one move an agent or autoplay applied.
type Step struct {
	Move  domain.Move
	State domain.GameState
}

// Play asks the agent to calculate its move for the current state.
func (a *Agent) Play(state domain.GameState) (Move, error) {
	move, err := a.Strategy.CalculateMove(state)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}

// Run plays up to limit moves from state. It stops early when the strategy
// passes, the game is won, or a position comes round more than maxRevisits times.
func (a *Agent) Run(state domain.GameState, limit int) ([]Step, error) {
	memory := brain.NewMemory()
	var steps []Step
	for len(steps) < limit && !state.IsWon() {
		memory.MarkVisited(state)
		if memory.Visits(state) > maxRevisits {
			break
		}

		move, err := a.Play(state)
		if err != nil {
			return steps, err
		}
		if move.Pass {
			break
		}

		next, err := domain.ApplyMove(state, move.Play)
		if err != nil {
			return steps, err
		}
		state = next
		steps = append(steps, Step{Move: move.Play, State: state})
	}
	return steps, nil
}

// AutoFinish sends every card it can to a foundation, from the discard pile or
// a tableau pile, until no such move is left or limit moves were made.
func AutoFinish(state domain.GameState, limit int) []Step {
	var steps []Step
	for len(steps) < limit {
		moves := internal.FoundationMoves(internal.GetValidMoves(state))
		if len(moves) == 0 {
			break
		}
		state = moves[0].Next.State
		steps = append(steps, Step{Move: moves[0].Move, State: state})
	}
	return steps
}

// Hint returns the move brain would play, or ok=false when none is worth playing.
func Hint(b Brain, state domain.GameState) (domain.Move, bool, error) {
	move, err := b.CalculateMove(state)
	if err != nil {
		return domain.Move{}, false, err
	}
	if move.Pass {
		return domain.Move{}, false, nil
	}
	return move.Play, true, nil
}
