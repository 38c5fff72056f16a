package ports

import (
	"context"
	"errors"

	"klondike/internal/domain"
)

var (
	// ErrGameNotFound is returned when no game is stored under an id.
	ErrGameNotFound = errors.New("game not found")
	// ErrVersionConflict is returned when a write loses an optimistic version check.
	ErrVersionConflict = errors.New("game was modified concurrently")
)

// PlayerRecord is the per-player index of games and totals.
type PlayerRecord struct {
	Games     []string `json:"games"`
	Won       int      `json:"won"`
	BestScore int      `json:"best_score"`
}

// GameStore persists games with optimistic concurrency per game id.
type GameStore interface {
	// CreateGame stores a new game and appends its id to the owner's record.
	CreateGame(ctx context.Context, game *domain.Game) error
	// LoadGame returns the game and the version to pass back to SaveGame.
	LoadGame(ctx context.Context, gameID string) (*domain.Game, string, error)
	// SaveGame writes game if the stored version still equals version and
	// returns the new version. A stale version yields ErrVersionConflict.
	SaveGame(ctx context.Context, game *domain.Game, version string) (string, error)
	// ListGames returns the owner's games in creation order.
	ListGames(ctx context.Context, ownerID string) ([]*domain.Game, error)
}

// PlayerPort manages per-player records.
type PlayerPort interface {
	// InitPlayer creates an empty record once. Returns created=false when it already exists.
	InitPlayer(ctx context.Context, userID string) (bool, error)
	// LoadPlayer returns the player's record; a missing record is returned empty.
	LoadPlayer(ctx context.Context, userID string) (PlayerRecord, error)
	// RecordWin bumps the won counter and best score.
	RecordWin(ctx context.Context, userID string, score int) error
}
