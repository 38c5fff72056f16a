package domain

import "math/rand"

// NewDeck returns an ordered, face-down 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck. A nil rng uses the
// package-level source.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}

// Shuffle returns a fresh shuffled deck.
func Shuffle(rng *rand.Rand) []Card {
	return ShuffleDeck(NewDeck(), rng)
}

// SeededDeck returns the deck produced by seed; equal seeds give equal decks.
func SeededDeck(seed int64) []Card {
	return Shuffle(rand.New(rand.NewSource(seed)))
}
