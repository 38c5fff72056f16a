package domain

// CheckFoundation reports whether card may be pushed onto a foundation whose
// current cards are stack.
func CheckFoundation(stack []Card, card Card) error {
	if len(stack) == 0 {
		if card.Rank != Ace {
			return rejectf(ReasonFoundationRequiresAce, "first card in stack must be an ace, got %s", card)
		}
		return nil
	}

	top := stack[len(stack)-1]
	if card.Suit != top.Suit {
		return rejectf(ReasonFoundationSuitMismatch, "cards in stack must be the same suit: %s on %s", card, top)
	}
	if card.Rank != top.Rank+1 {
		return rejectf(ReasonFoundationSequenceBroken, "cards in stack must be in ascending order: %s on %s", card, top)
	}
	return nil
}

// CheckTableau reports whether a run led by lead may be pushed onto a
// tableau pile whose current cards are pile.
func CheckTableau(pile []Card, lead Card) error {
	if len(pile) == 0 {
		if lead.Rank != King {
			return rejectf(ReasonTableauRequiresKing, "first card in pile must be a king, got %s", lead)
		}
		return nil
	}

	top := pile[len(pile)-1]
	if lead.Color() == top.Color() {
		return rejectf(ReasonTableauColorConflict, "cannot place card on same color: %s on %s", lead, top)
	}
	if lead.Rank+1 != top.Rank {
		return rejectf(ReasonTableauSequenceBroken, "card value must be one less than pile card: %s on %s", lead, top)
	}
	return nil
}

// stacksOn reports whether upper may sit directly on lower in a tableau run.
func stacksOn(upper, lower Card) bool {
	return upper.Color() != lower.Color() && upper.Rank+1 == lower.Rank
}

// IsRun reports whether cards, bottom first, alternate colors and descend by
// one rank at each step.
func IsRun(cards []Card) bool {
	for i := 1; i < len(cards); i++ {
		if !stacksOn(cards[i], cards[i-1]) {
			return false
		}
	}
	return true
}

// FaceUpRun returns the longest face-up suffix of a tableau pile.
func FaceUpRun(pile []Card) []Card {
	i := len(pile)
	for i > 0 && pile[i-1].Up {
		i--
	}
	return pile[i:]
}

// matchesTop reports whether cards are exactly the face-up top of pile.
func matchesTop(pile, cards []Card) bool {
	if len(cards) == 0 || len(cards) > len(pile) {
		return false
	}
	top := pile[len(pile)-len(cards):]
	for i, c := range cards {
		if !top[i].Up || !top[i].Same(c) {
			return false
		}
	}
	return true
}
