package domain

import (
	"strconv"
	"strings"
)

// PileKind tags a pile identifier.
type PileKind uint8

const (
	KindTableau PileKind = iota + 1
	KindFoundation
	KindDraw
	KindDiscard
)

const (
	// TableauPiles is the number of tableau columns.
	TableauPiles = 7
	// FoundationPiles is the number of foundation stacks.
	FoundationPiles = 4
)

// wire prefixes for indexed piles
const (
	tableauPrefix    = "pile"
	foundationPrefix = "stack"
	drawName         = "draw"
	discardName      = "discard"
)

// PileID names one of the 13 piles. Index is 1-based for tableau and
// foundation piles and zero for draw and discard.
type PileID struct {
	Kind  PileKind
	Index int
}

var (
	DrawPile    = PileID{Kind: KindDraw}
	DiscardPile = PileID{Kind: KindDiscard}
)

// Tableau returns the identifier of tableau column i (1..7).
func Tableau(i int) PileID {
	return PileID{Kind: KindTableau, Index: i}
}

// Foundation returns the identifier of foundation stack i (1..4).
func Foundation(i int) PileID {
	return PileID{Kind: KindFoundation, Index: i}
}

// AllPiles lists every pile in wire order.
func AllPiles() []PileID {
	ids := make([]PileID, 0, TableauPiles+FoundationPiles+2)
	for i := 1; i <= TableauPiles; i++ {
		ids = append(ids, Tableau(i))
	}
	for i := 1; i <= FoundationPiles; i++ {
		ids = append(ids, Foundation(i))
	}
	return append(ids, DrawPile, DiscardPile)
}

// Valid reports whether the identifier refers to an existing pile.
func (p PileID) Valid() bool {
	switch p.Kind {
	case KindTableau:
		return p.Index >= 1 && p.Index <= TableauPiles
	case KindFoundation:
		return p.Index >= 1 && p.Index <= FoundationPiles
	case KindDraw, KindDiscard:
		return p.Index == 0
	}
	return false
}

// IsTableau reports whether p is a tableau column.
func (p PileID) IsTableau() bool { return p.Kind == KindTableau }

// IsFoundation reports whether p is a foundation stack.
func (p PileID) IsFoundation() bool { return p.Kind == KindFoundation }

// String returns the wire name ("pile3", "stack1", "draw", "discard").
func (p PileID) String() string {
	switch p.Kind {
	case KindTableau:
		return tableauPrefix + strconv.Itoa(p.Index)
	case KindFoundation:
		return foundationPrefix + strconv.Itoa(p.Index)
	case KindDraw:
		return drawName
	case KindDiscard:
		return discardName
	}
	return "unknown"
}

// ParsePileID converts a wire name into a PileID. Unknown names are rejected
// with ReasonUnknownPileID.
func ParsePileID(s string) (PileID, error) {
	switch s {
	case drawName:
		return DrawPile, nil
	case discardName:
		return DiscardPile, nil
	}

	var id PileID
	var digits string
	switch {
	case strings.HasPrefix(s, tableauPrefix):
		id.Kind, digits = KindTableau, s[len(tableauPrefix):]
	case strings.HasPrefix(s, foundationPrefix):
		id.Kind, digits = KindFoundation, s[len(foundationPrefix):]
	default:
		return PileID{}, rejectf(ReasonUnknownPileID, "unknown pile %q", s)
	}

	n, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(n) != digits {
		return PileID{}, rejectf(ReasonUnknownPileID, "unknown pile %q", s)
	}
	id.Index = n
	if !id.Valid() {
		return PileID{}, rejectf(ReasonUnknownPileID, "unknown pile %q", s)
	}
	return id, nil
}

// MarshalText encodes the wire name.
func (p PileID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a wire name.
func (p *PileID) UnmarshalText(text []byte) error {
	id, err := ParsePileID(string(text))
	if err != nil {
		return err
	}
	*p = id
	return nil
}
