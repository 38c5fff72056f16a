package internal

import "klondike/internal/domain"

// ValidMove pairs a legal move with the state it produces.
type ValidMove struct {
	Move domain.Move
	Next domain.Transition
}

// IsDraw reports whether the move turns the draw pile.
func (v ValidMove) IsDraw() bool {
	return v.Next.Category == domain.CategoryDraw
}

// Reveals reports whether the move turns up a face-down tableau card.
func (v ValidMove) Reveals(before domain.GameState) bool {
	if !v.Move.Src.IsTableau() {
		return false
	}
	pile := before.Pile(v.Move.Src)
	cut := len(pile) - len(v.Next.Moved)
	return cut > 0 && !pile[cut-1].Up
}

// EmptiesColumn reports whether the move leaves its tableau source empty.
func (v ValidMove) EmptiesColumn() bool {
	return v.Move.Src.IsTableau() && len(v.Next.State.Pile(v.Move.Src)) == 0
}

// GetValidMoves returns every move that changes state, in a stable order:
// foundation plays first, then tableau plays, then the draw action.
//
// Moves that cannot make progress are left out: foundation to foundation,
// and a whole column rooted on a king moving onto another empty column.
func GetValidMoves(state domain.GameState) []ValidMove {
	var moves []ValidMove
	try := func(m domain.Move) {
		t, err := domain.ApplyMoveDetailed(state, m)
		if err != nil {
			return
		}
		moves = append(moves, ValidMove{Move: m, Next: t})
	}

	sources := []domain.PileID{domain.DiscardPile}
	for i := 1; i <= domain.TableauPiles; i++ {
		sources = append(sources, domain.Tableau(i))
	}

	// Foundation plays.
	for _, src := range sources {
		pile := state.Pile(src)
		if len(pile) == 0 {
			continue
		}
		top := pile[len(pile)-1]
		for i := 1; i <= domain.FoundationPiles; i++ {
			try(domain.Move{Src: src, Dst: domain.Foundation(i), Cards: []domain.Card{top}})
		}
	}

	// Tableau plays.
	for i := 1; i <= domain.FoundationPiles; i++ {
		sources = append(sources, domain.Foundation(i))
	}
	for _, src := range sources {
		pile := state.Pile(src)
		if len(pile) == 0 {
			continue
		}
		runs := [][]domain.Card{pile[len(pile)-1:]}
		if src.IsTableau() {
			run := domain.FaceUpRun(pile)
			runs = runs[:0]
			for j := range run {
				runs = append(runs, run[j:])
			}
		}
		for _, run := range runs {
			for i := 1; i <= domain.TableauPiles; i++ {
				dst := domain.Tableau(i)
				if src.IsTableau() && len(run) == len(pile) && len(state.Pile(dst)) == 0 {
					continue
				}
				try(domain.Move{Src: src, Dst: dst, Cards: run})
			}
		}
	}

	if len(state.Draw) > 0 || len(state.Discard) > 0 {
		try(domain.Move{Src: domain.DrawPile, Dst: domain.DiscardPile})
	}
	return moves
}

// FoundationMoves filters moves down to plays onto a foundation from outside it.
func FoundationMoves(moves []ValidMove) []ValidMove {
	var out []ValidMove
	for _, m := range moves {
		if m.Move.Dst.IsFoundation() && !m.Move.Src.IsFoundation() {
			out = append(out, m)
		}
	}
	return out
}
