package internal

import "klondike/internal/domain"

// GamePhase describes how far a deal has been opened up.
type GamePhase int

const (
	// PhaseOpening indicates most tableau cards are still face-down.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates some face-down cards remain.
	PhaseMid
	// PhaseEnd indicates every tableau card is face-up.
	PhaseEnd
)

// openingHidden is the face-down count above which a deal counts as opening.
// A fresh deal hides 21 cards.
const openingHidden = 14

func (p GamePhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseEnd:
		return "end"
	default:
		return "mid"
	}
}

// DetectPhase infers the phase from the number of face-down tableau cards.
func DetectPhase(state domain.GameState) GamePhase {
	hidden := HiddenCards(state)
	switch {
	case hidden == 0:
		return PhaseEnd
	case hidden > openingHidden:
		return PhaseOpening
	default:
		return PhaseMid
	}
}

// HiddenCards counts face-down tableau cards.
func HiddenCards(state domain.GameState) int {
	n := 0
	for _, pile := range state.Tableau {
		for _, c := range pile {
			if !c.Up {
				n++
			}
		}
	}
	return n
}
