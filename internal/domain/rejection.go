package domain

import (
	"errors"
	"fmt"
)

// Reason classifies why a move was rejected.
type Reason string

const (
	ReasonSameSourceDestination    Reason = "SameSourceDestination"
	ReasonEmptyMove                Reason = "EmptyMove"
	ReasonFoundationRequiresAce    Reason = "FoundationRequiresAce"
	ReasonFoundationSuitMismatch   Reason = "FoundationSuitMismatch"
	ReasonFoundationSequenceBroken Reason = "FoundationSequenceBroken"
	ReasonTableauRequiresKing      Reason = "TableauRequiresKing"
	ReasonTableauColorConflict     Reason = "TableauColorConflict"
	ReasonTableauSequenceBroken    Reason = "TableauSequenceBroken"
	ReasonIllegalDiscardTarget     Reason = "IllegalDiscardTarget"
	ReasonUnknownPileID            Reason = "UnknownPileId"
	ReasonCardMismatch             Reason = "CardMismatch"
	ReasonBrokenRun                Reason = "BrokenRun"
	ReasonIllegalDrawMove          Reason = "IllegalDrawMove"
	ReasonMalformedMove            Reason = "MalformedMove"
)

// Rejection is returned for every move the rules refuse. It is always
// recoverable: the caller keeps the state it passed in.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return r.Detail
}

// Is matches any rejection with the same reason, so errors.Is works against
// the sentinel values below regardless of detail text.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

var (
	ErrSameSourceDestination    = &Rejection{Reason: ReasonSameSourceDestination, Detail: "source and destination cannot be the same"}
	ErrEmptyMove                = &Rejection{Reason: ReasonEmptyMove, Detail: "move carries no cards"}
	ErrFoundationRequiresAce    = &Rejection{Reason: ReasonFoundationRequiresAce, Detail: "first card in stack must be an ace"}
	ErrFoundationSuitMismatch   = &Rejection{Reason: ReasonFoundationSuitMismatch, Detail: "cards in stack must be the same suit"}
	ErrFoundationSequenceBroken = &Rejection{Reason: ReasonFoundationSequenceBroken, Detail: "cards in stack must be in ascending order"}
	ErrTableauRequiresKing      = &Rejection{Reason: ReasonTableauRequiresKing, Detail: "first card in pile must be a king"}
	ErrTableauColorConflict     = &Rejection{Reason: ReasonTableauColorConflict, Detail: "cannot place card on same color"}
	ErrTableauSequenceBroken    = &Rejection{Reason: ReasonTableauSequenceBroken, Detail: "card value must be one less than pile card"}
	ErrIllegalDiscardTarget     = &Rejection{Reason: ReasonIllegalDiscardTarget, Detail: "cannot move from pile/stack to discard"}
	ErrUnknownPileID            = &Rejection{Reason: ReasonUnknownPileID, Detail: "unknown pile"}
	ErrCardMismatch             = &Rejection{Reason: ReasonCardMismatch, Detail: "cards are not on top of the source pile"}
	ErrBrokenRun                = &Rejection{Reason: ReasonBrokenRun, Detail: "cards do not form an alternating descending run"}
	ErrIllegalDrawMove          = &Rejection{Reason: ReasonIllegalDrawMove, Detail: "draw pile only feeds the discard pile"}
	ErrMalformedMove            = &Rejection{Reason: ReasonMalformedMove, Detail: "malformed move"}
)

// ErrInvalidDeck and ErrInvalidDrawCount are programmer errors from Deal, not rejections.
var (
	ErrInvalidDeck      = errors.New("deck must hold 52 unique cards")
	ErrInvalidDrawCount = errors.New("draw count must be 1 or 3")
)

func rejectf(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, if err is a rejection.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

// IsRejection reports whether err is a rule rejection rather than a fault.
func IsRejection(err error) bool {
	_, ok := ReasonOf(err)
	return ok
}
