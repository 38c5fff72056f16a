package domain

import (
	"fmt"
	"strconv"
)

// Suit is one of the four French suits, encoded by its lowercase name on the wire.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the suits in deck order.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// Color is derived from a suit.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// Color returns red for hearts and diamonds, black otherwise.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// UnmarshalText rejects anything that is not a known suit.
func (s *Suit) UnmarshalText(text []byte) error {
	v := Suit(text)
	if !v.Valid() {
		return rejectf(ReasonMalformedMove, "unknown suit %q", string(text))
	}
	*s = v
	return nil
}

// Rank orders cards from ace (1) to king (13).
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var faceNames = map[Rank]string{
	Ace:   "ace",
	Jack:  "jack",
	Queen: "queen",
	King:  "king",
}

// Valid reports whether r is in ace..king.
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// String returns the wire value: "ace", "2".."10", "jack", "queen", "king".
func (r Rank) String() string {
	if name, ok := faceNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// ParseRank converts a wire value to a Rank.
func ParseRank(s string) (Rank, error) {
	for r, name := range faceNames {
		if name == s {
			return r, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(Two) || n > int(Ten) {
		return 0, rejectf(ReasonMalformedMove, "unknown card value %q", s)
	}
	return Rank(n), nil
}

// MarshalText encodes the rank as its wire value.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a wire value.
func (r *Rank) UnmarshalText(text []byte) error {
	v, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Card is an immutable playing card value.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"value"`
	Up   bool `json:"up"`
}

// Color returns the card's suit color.
func (c Card) Color() Color {
	return c.Suit.Color()
}

// Same reports whether c and o are the same card, ignoring orientation.
func (c Card) Same(o Card) bool {
	return c.Suit == o.Suit && c.Rank == o.Rank
}

// FaceUp returns a copy of c turned face-up.
func (c Card) FaceUp() Card {
	c.Up = true
	return c
}

// FaceDown returns a copy of c turned face-down.
func (c Card) FaceDown() Card {
	c.Up = false
	return c
}

// String renders the card for logs and move descriptions, e.g. "queen of Hearts".
func (c Card) String() string {
	suit := string(c.Suit)
	if suit != "" {
		suit = string(suit[0]-'a'+'A') + suit[1:]
	}
	return c.Rank.String() + " of " + suit
}

// cardKey identifies a card independent of orientation.
type cardKey struct {
	suit Suit
	rank Rank
}

func keyOf(c Card) cardKey {
	return cardKey{suit: c.Suit, rank: c.Rank}
}
