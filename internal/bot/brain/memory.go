package brain

import (
	"strings"

	"klondike/internal/domain"
)

// PositionStatus represents what the bot knows about a position.
type PositionStatus int

const (
	StatusUnseen  PositionStatus = iota // Never reached
	StatusVisited                       // Reached by a played move
	StatusDeadEnd                       // Every continuation was tried
)

// GameMemory stores the positions a bot has already played through so that it
// does not shuffle cards back and forth.
type GameMemory struct {
	positions map[string]PositionStatus
	visits    map[string]int
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{
		positions: make(map[string]PositionStatus),
		visits:    make(map[string]int),
	}
}

// Reset clears the memory for a new game.
func (m *GameMemory) Reset() {
	m.positions = make(map[string]PositionStatus)
	m.visits = make(map[string]int)
}

// MarkVisited records that state was reached.
func (m *GameMemory) MarkVisited(state domain.GameState) {
	key := Fingerprint(state)
	m.visits[key]++
	if m.positions[key] == StatusUnseen {
		m.positions[key] = StatusVisited
	}
}

// MarkDeadEnd records that nothing useful follows state.
func (m *GameMemory) MarkDeadEnd(state domain.GameState) {
	m.positions[Fingerprint(state)] = StatusDeadEnd
}

// Status returns what is known about state.
func (m *GameMemory) Status(state domain.GameState) PositionStatus {
	return m.positions[Fingerprint(state)]
}

// Seen reports whether state was reached before.
func (m *GameMemory) Seen(state domain.GameState) bool {
	return m.Status(state) != StatusUnseen
}

// Visits returns how many times state was reached.
func (m *GameMemory) Visits(state domain.GameState) int {
	return m.visits[Fingerprint(state)]
}

// Fingerprint renders every pile of state into a compact key. Two states with
// the same cards in the same piles and orientation share a fingerprint.
func Fingerprint(state domain.GameState) string {
	var b strings.Builder
	for _, id := range domain.AllPiles() {
		b.WriteString(id.String())
		b.WriteByte(':')
		for _, c := range state.Pile(id) {
			b.WriteByte(byte('a' + c.Rank))
			if c.Suit != "" {
				b.WriteByte(c.Suit[0])
			}
			if c.Up {
				b.WriteByte('+')
			}
		}
		b.WriteByte('|')
	}
	return b.String()
}
