package app

import (
	"time"

	"klondike/internal/domain"
)

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameCreated EventKind = "game_created"
	EventMoveApplied EventKind = "move_applied"
	EventGameWon     EventKind = "game_won"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameCreatedPayload struct {
	GameID    string
	Owner     string
	DrawCount int
}

type MoveAppliedPayload struct {
	GameID      string
	Record      domain.MoveRecord
	Description string
	Recycled    bool
	View        domain.ClientView
}

type GameWonPayload struct {
	GameID   string
	Winner   string
	Score    int
	Moves    int
	Duration time.Duration
}
