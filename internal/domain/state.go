package domain

import (
	"encoding/json"
	"fmt"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// GameState holds the 13 piles of a Klondike deal. Values are treated as
// immutable: ApplyMove works on a Clone and never touches its input.
type GameState struct {
	Tableau     [TableauPiles][]Card
	Foundations [FoundationPiles][]Card
	Draw        []Card
	Discard     []Card
	DrawCount   int
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := GameState{DrawCount: s.DrawCount}
	for i := range s.Tableau {
		out.Tableau[i] = cloneCards(s.Tableau[i])
	}
	for i := range s.Foundations {
		out.Foundations[i] = cloneCards(s.Foundations[i])
	}
	out.Draw = cloneCards(s.Draw)
	out.Discard = cloneCards(s.Discard)
	return out
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// Pile returns the cards of the named pile, bottom first. The slice aliases
// the state; callers must not modify it.
func (s *GameState) Pile(id PileID) []Card {
	switch id.Kind {
	case KindTableau:
		return s.Tableau[id.Index-1]
	case KindFoundation:
		return s.Foundations[id.Index-1]
	case KindDraw:
		return s.Draw
	case KindDiscard:
		return s.Discard
	}
	return nil
}

func (s *GameState) setPile(id PileID, cards []Card) {
	switch id.Kind {
	case KindTableau:
		s.Tableau[id.Index-1] = cards
	case KindFoundation:
		s.Foundations[id.Index-1] = cards
	case KindDraw:
		s.Draw = cards
	case KindDiscard:
		s.Discard = cards
	}
}

// Cards returns every card in the state in wire pile order.
func (s *GameState) Cards() []Card {
	out := make([]Card, 0, DeckSize)
	for _, id := range AllPiles() {
		out = append(out, s.Pile(id)...)
	}
	return out
}

// FoundationCount is the number of cards on all foundations.
func (s *GameState) FoundationCount() int {
	n := 0
	for _, f := range s.Foundations {
		n += len(f)
	}
	return n
}

// CardsRemaining is the number of cards not yet on a foundation.
func (s *GameState) CardsRemaining() int {
	return DeckSize - s.FoundationCount()
}

// IsWon reports whether every foundation holds a full suit.
func (s *GameState) IsWon() bool {
	for _, f := range s.Foundations {
		if len(f) != int(King) {
			return false
		}
	}
	return true
}

// Layout is the canonical wire shape of a game state.
type Layout struct {
	Pile1     []Card `json:"pile1"`
	Pile2     []Card `json:"pile2"`
	Pile3     []Card `json:"pile3"`
	Pile4     []Card `json:"pile4"`
	Pile5     []Card `json:"pile5"`
	Pile6     []Card `json:"pile6"`
	Pile7     []Card `json:"pile7"`
	Stack1    []Card `json:"stack1"`
	Stack2    []Card `json:"stack2"`
	Stack3    []Card `json:"stack3"`
	Stack4    []Card `json:"stack4"`
	Draw      []Card `json:"draw"`
	Discard   []Card `json:"discard"`
	DrawCount int    `json:"drawCount"`
}

func (l *Layout) tableau() [TableauPiles]*[]Card {
	return [TableauPiles]*[]Card{&l.Pile1, &l.Pile2, &l.Pile3, &l.Pile4, &l.Pile5, &l.Pile6, &l.Pile7}
}

func (l *Layout) foundations() [FoundationPiles]*[]Card {
	return [FoundationPiles]*[]Card{&l.Stack1, &l.Stack2, &l.Stack3, &l.Stack4}
}

// nonNil keeps empty piles rendering as [] instead of null.
func nonNil(cards []Card) []Card {
	if cards == nil {
		return []Card{}
	}
	return cloneCards(cards)
}

// Layout copies s into its wire shape.
func (s GameState) Layout() Layout {
	l := Layout{
		Draw:      nonNil(s.Draw),
		Discard:   nonNil(s.Discard),
		DrawCount: s.DrawCount,
	}
	for i, p := range l.tableau() {
		*p = nonNil(s.Tableau[i])
	}
	for i, p := range l.foundations() {
		*p = nonNil(s.Foundations[i])
	}
	return l
}

// State converts the wire shape back into a GameState.
func (l Layout) State() GameState {
	s := GameState{
		Draw:      cloneCards(l.Draw),
		Discard:   cloneCards(l.Discard),
		DrawCount: l.DrawCount,
	}
	for i, p := range l.tableau() {
		s.Tableau[i] = cloneCards(*p)
	}
	for i, p := range l.foundations() {
		s.Foundations[i] = cloneCards(*p)
	}
	return s
}

func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Layout())
}

func (s *GameState) UnmarshalJSON(data []byte) error {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	*s = l.State()
	return nil
}

// CheckInvariants verifies card conservation, foundation order, tableau
// alternation and draw/discard orientation.
func CheckInvariants(s GameState) error {
	if s.DrawCount != 1 && s.DrawCount != 3 {
		return fmt.Errorf("%w: got %d", ErrInvalidDrawCount, s.DrawCount)
	}
	if err := checkDeck(s.Cards()); err != nil {
		return err
	}

	for i, f := range s.Foundations {
		for j, c := range f {
			if !c.Up {
				return fmt.Errorf("stack%d: card %d is face-down", i+1, j+1)
			}
			if c.Rank != Rank(j+1) || c.Suit != f[0].Suit {
				return fmt.Errorf("stack%d: %s out of sequence", i+1, c)
			}
		}
	}

	for i, p := range s.Tableau {
		if len(p) == 0 {
			continue
		}
		if !p[len(p)-1].Up {
			return fmt.Errorf("pile%d: top card is face-down", i+1)
		}
		for j := len(p) - 1; j > 0 && p[j-1].Up; j-- {
			if !stacksOn(p[j], p[j-1]) {
				return fmt.Errorf("pile%d: %s cannot sit on %s", i+1, p[j], p[j-1])
			}
		}
	}

	for _, c := range s.Draw {
		if c.Up {
			return fmt.Errorf("draw: %s is face-up", c)
		}
	}
	for _, c := range s.Discard {
		if !c.Up {
			return fmt.Errorf("discard: %s is face-down", c)
		}
	}
	return nil
}

// checkDeck verifies cards is exactly the standard 52-card set.
func checkDeck(cards []Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("%w: got %d cards", ErrInvalidDeck, len(cards))
	}
	seen := make(map[cardKey]bool, DeckSize)
	for _, c := range cards {
		if !c.Suit.Valid() || !c.Rank.Valid() {
			return fmt.Errorf("%w: invalid card %v", ErrInvalidDeck, c)
		}
		k := keyOf(c)
		if seen[k] {
			return fmt.Errorf("%w: duplicate %s", ErrInvalidDeck, c)
		}
		seen[k] = true
	}
	return nil
}
