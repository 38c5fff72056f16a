package domain

import "fmt"

// ValidDrawCount reports whether n is a supported draw count.
func ValidDrawCount(n int) bool {
	return n == 1 || n == 3
}

// Deal lays the deck out into the opening position. Tableau pile i takes i
// cards in deck order with only its last card face-up; the remaining cards
// form the draw pile face-down.
func Deal(deck []Card, drawCount int) (GameState, error) {
	if !ValidDrawCount(drawCount) {
		return GameState{}, fmt.Errorf("%w: got %d", ErrInvalidDrawCount, drawCount)
	}
	if err := checkDeck(deck); err != nil {
		return GameState{}, err
	}

	state := GameState{DrawCount: drawCount}
	next := 0
	for i := 0; i < TableauPiles; i++ {
		pile := make([]Card, 0, i+1)
		for j := 0; j <= i; j++ {
			c := deck[next].FaceDown()
			if j == i {
				c = c.FaceUp()
			}
			pile = append(pile, c)
			next++
		}
		state.Tableau[i] = pile
	}

	state.Draw = make([]Card, 0, len(deck)-next)
	for _, c := range deck[next:] {
		state.Draw = append(state.Draw, c.FaceDown())
	}
	state.Discard = []Card{}
	for i := range state.Foundations {
		state.Foundations[i] = []Card{}
	}
	return state, nil
}
