package bot

import (
	"sort"

	"klondike/internal/bot/brain"
	"klondike/internal/bot/internal"
	"klondike/internal/domain"
)

const (
	lookaheadDiscount = 0.6
	repeatPenalty     = 15.0
	maxRevisits       = 3
)

// GodBot looks one move further than SmartBot and remembers the positions it
// played through so it does not cycle the stock forever.
type GodBot struct {
	SmartBot
	memory *brain.GameMemory
}

// NewGodBot returns a GodBot with empty memory.
func NewGodBot() *GodBot {
	return &GodBot{memory: brain.NewMemory()}
}

// Reset forgets every remembered position.
func (b *GodBot) Reset() {
	if b.memory != nil {
		b.memory.Reset()
	}
}

func (b *GodBot) CalculateMove(state domain.GameState) (Move, error) {
	if b.memory == nil {
		b.memory = brain.NewMemory()
	}
	b.memory.MarkVisited(state)

	validMoves := internal.GetValidMoves(state)
	if len(validMoves) == 0 {
		b.memory.MarkDeadEnd(state)
		return Move{Pass: true}, nil
	}

	tuning := b.tuning()
	weights := tuning.ForPhase(internal.DetectPhase(state))
	scored := internal.BuildScoredMoves(state, validMoves, weights)

	type candidate struct {
		move    internal.ValidMove
		value   float64
		revisit int
	}
	candidates := make([]candidate, 0, len(scored))
	for _, s := range scored {
		next := s.Move.Next.State
		value := s.Score

		// Winning outright beats any lookahead.
		if !next.IsWon() {
			follow := internal.BuildScoredMoves(next, internal.GetValidMoves(next), weights)
			best := value
			for _, f := range follow {
				if f.Score > best {
					best = f.Score
				}
			}
			value += lookaheadDiscount * (best - value)
		}

		if b.memory.Status(next) == brain.StatusDeadEnd {
			value -= 2 * repeatPenalty
		}
		revisit := b.memory.Visits(next)
		value -= repeatPenalty * float64(revisit)

		candidates = append(candidates, candidate{move: s.Move, value: value, revisit: revisit})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value > candidates[j].value
	})

	best := candidates[0]
	if best.revisit >= maxRevisits {
		b.memory.MarkDeadEnd(state)
		return Move{Pass: true}, nil
	}
	return Move{Play: best.move.Move}, nil
}
