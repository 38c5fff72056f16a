package brain

import (
	"testing"

	"klondike/internal/domain"
)

func TestGameMemory(t *testing.T) {
	m := NewMemory()
	state, err := domain.Deal(domain.SeededDeck(5), 1)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}

	if m.Seen(state) {
		t.Fatal("fresh memory should not know the deal")
	}

	m.MarkVisited(state)
	m.MarkVisited(state)
	if m.Status(state) != StatusVisited || m.Visits(state) != 2 {
		t.Errorf("status = %d visits = %d", m.Status(state), m.Visits(state))
	}

	next, err := domain.ApplyMove(state, domain.Move{Src: domain.DrawPile, Dst: domain.DiscardPile})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if m.Seen(next) {
		t.Error("drawn position should be unseen")
	}

	m.MarkDeadEnd(next)
	m.MarkVisited(next)
	if m.Status(next) != StatusDeadEnd {
		t.Errorf("dead end should stick, got %d", m.Status(next))
	}

	m.Reset()
	if m.Seen(state) || m.Seen(next) {
		t.Error("reset should forget every position")
	}
}

func TestFingerprint(t *testing.T) {
	state, err := domain.Deal(domain.SeededDeck(5), 1)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if Fingerprint(state) != Fingerprint(state.Clone()) {
		t.Error("clone should share a fingerprint")
	}

	flipped := state.Clone()
	flipped.Draw[0] = flipped.Draw[0].FaceUp()
	if Fingerprint(flipped) == Fingerprint(state) {
		t.Error("orientation should change the fingerprint")
	}
}
