package domain

import (
	"encoding/json"
	"errors"
)

// Move is a validated-at-the-boundary move request: both piles are known.
type Move struct {
	Src   PileID
	Dst   PileID
	Cards []Card
}

// MoveRequest is the wire shape of a move.
type MoveRequest struct {
	Src   string `json:"src"`
	Dst   string `json:"dst"`
	Cards []Card `json:"cards"`
}

// ParseMove resolves the pile names of a request.
func ParseMove(req MoveRequest) (Move, error) {
	src, err := ParsePileID(req.Src)
	if err != nil {
		return Move{}, err
	}
	dst, err := ParsePileID(req.Dst)
	if err != nil {
		return Move{}, err
	}
	return Move{Src: src, Dst: dst, Cards: cloneCards(req.Cards)}, nil
}

// DecodeMove parses a JSON move payload. Syntax errors and unknown suits or
// values are reported as MalformedMove rejections.
func DecodeMove(data []byte) (Move, error) {
	var req MoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			return Move{}, rej
		}
		return Move{}, rejectf(ReasonMalformedMove, "malformed move: %v", err)
	}
	return ParseMove(req)
}

// Request converts the move back into its wire shape.
func (m Move) Request() MoveRequest {
	return MoveRequest{Src: m.Src.String(), Dst: m.Dst.String(), Cards: cloneCards(m.Cards)}
}

// Category is the kind of transfer a move performs.
type Category uint8

const (
	CategoryDraw Category = iota + 1
	CategoryFoundation
	CategoryTableau
)

func (c Category) String() string {
	switch c {
	case CategoryDraw:
		return "draw"
	case CategoryFoundation:
		return "foundation"
	case CategoryTableau:
		return "tableau"
	}
	return "unknown"
}

// Classify decides which handler a move goes to, or rejects it when no
// handler accepts that pair of piles.
func Classify(m Move) (Category, error) {
	if !m.Src.Valid() {
		return 0, rejectf(ReasonUnknownPileID, "unknown pile %q", m.Src)
	}
	if !m.Dst.Valid() {
		return 0, rejectf(ReasonUnknownPileID, "unknown pile %q", m.Dst)
	}

	switch {
	case m.Src == m.Dst:
		return 0, ErrSameSourceDestination
	case m.Src.Kind == KindDraw && m.Dst.Kind == KindDiscard:
		return CategoryDraw, nil
	case m.Dst.Kind == KindDiscard:
		return 0, ErrIllegalDiscardTarget
	case m.Src.Kind == KindDraw || m.Dst.Kind == KindDraw:
		return 0, ErrIllegalDrawMove
	case m.Dst.Kind == KindFoundation:
		return CategoryFoundation, nil
	case m.Dst.Kind == KindTableau:
		return CategoryTableau, nil
	}
	return 0, rejectf(ReasonUnknownPileID, "unknown pile %q", m.Dst)
}

// Transition is the outcome of an accepted move.
type Transition struct {
	State    GameState
	Category Category
	// Moved holds the cards that changed pile, as they now lie.
	Moved []Card
	// Recycled is set when a draw action turned the discard pile over.
	Recycled bool
}

// ApplyMove validates m against state and returns the resulting state. On
// rejection the input state is returned unchanged together with the error.
func ApplyMove(state GameState, m Move) (GameState, error) {
	t, err := ApplyMoveDetailed(state, m)
	if err != nil {
		return state, err
	}
	return t.State, nil
}

// ApplyMoveDetailed is ApplyMove reporting what moved.
func ApplyMoveDetailed(state GameState, m Move) (Transition, error) {
	category, err := Classify(m)
	if err != nil {
		return Transition{}, err
	}

	next := state.Clone()
	t := Transition{Category: category}
	switch category {
	case CategoryDraw:
		t.Moved, t.Recycled = applyDraw(&next)
	case CategoryFoundation:
		t.Moved, err = applyToFoundation(&next, m)
	case CategoryTableau:
		t.Moved, err = applyToTableau(&next, m)
	}
	if err != nil {
		return Transition{}, err
	}

	if m.Src.IsTableau() {
		flipTop(&next, m.Src)
	}
	t.State = next
	return t, nil
}

// applyDraw turns up to DrawCount cards from draw onto discard, or recycles
// discard back into draw when draw is empty.
func applyDraw(s *GameState) ([]Card, bool) {
	if len(s.Draw) == 0 {
		if len(s.Discard) == 0 {
			return nil, false
		}
		draw := make([]Card, 0, len(s.Discard))
		for i := len(s.Discard) - 1; i >= 0; i-- {
			draw = append(draw, s.Discard[i].FaceDown())
		}
		s.Draw = draw
		s.Discard = []Card{}
		return nil, true
	}

	n := s.DrawCount
	if n < 1 {
		n = 1
	}
	if n > len(s.Draw) {
		n = len(s.Draw)
	}
	// The drawn block keeps its order, so the top of draw lands on top of discard.
	split := len(s.Draw) - n
	moved := make([]Card, 0, n)
	for _, c := range s.Draw[split:] {
		moved = append(moved, c.FaceUp())
	}
	s.Draw = s.Draw[:split]
	s.Discard = append(s.Discard, moved...)
	return cloneCards(moved), false
}

func applyToFoundation(s *GameState, m Move) ([]Card, error) {
	if len(m.Cards) == 0 {
		return nil, ErrEmptyMove
	}
	card := m.Cards[len(m.Cards)-1]
	if err := CheckFoundation(s.Pile(m.Dst), card); err != nil {
		return nil, err
	}

	src := s.Pile(m.Src)
	if !matchesTop(src, []Card{card}) {
		return nil, rejectf(ReasonCardMismatch, "%s is not on top of %s", card, m.Src)
	}
	moved := src[len(src)-1:]
	s.setPile(m.Src, src[:len(src)-1])
	s.setPile(m.Dst, append(s.Pile(m.Dst), moved...))
	return cloneCards(moved), nil
}

func applyToTableau(s *GameState, m Move) ([]Card, error) {
	if len(m.Cards) == 0 {
		return nil, ErrEmptyMove
	}

	run := m.Cards
	lead := run[0]
	if !m.Src.IsTableau() {
		lead = run[len(run)-1]
		run = []Card{lead}
	}
	if err := CheckTableau(s.Pile(m.Dst), lead); err != nil {
		return nil, err
	}

	src := s.Pile(m.Src)
	if !matchesTop(src, run) {
		return nil, rejectf(ReasonCardMismatch, "cards starting at %s are not the face-up top of %s", lead, m.Src)
	}
	if !IsRun(run) {
		return nil, rejectf(ReasonBrokenRun, "cards starting at %s do not form a run", lead)
	}

	cut := len(src) - len(run)
	moved := cloneCards(src[cut:])
	s.setPile(m.Src, src[:cut])
	s.setPile(m.Dst, append(s.Pile(m.Dst), moved...))
	return moved, nil
}

func flipTop(s *GameState, id PileID) {
	pile := s.Pile(id)
	if n := len(pile); n > 0 && !pile[n-1].Up {
		pile[n-1] = pile[n-1].FaceUp()
	}
}
