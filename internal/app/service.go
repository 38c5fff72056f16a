package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"klondike/internal/domain"

	"github.com/google/uuid"
)

// Service contains Klondike use-cases operating on domain state.
type Service struct {
	mu     sync.Mutex // guards rng
	rng    *rand.Rand
	policy domain.ScorePolicy
	now    func() time.Time
	newID  func() string
}

// NewService constructs a Service with provided rng or a time-seeded default.
// A nil policy scores with domain.DefaultScorePolicy.
func NewService(rng *rand.Rand, policy domain.ScorePolicy) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if policy == nil {
		policy = domain.DefaultScorePolicy
	}
	return &Service{
		rng:    rng,
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

var (
	ErrNotOwner           = errors.New("actor is not game owner")
	ErrGameOver           = errors.New("game is already complete")
	ErrMissingOwner       = errors.New("owner is required")
	ErrInvalidGameRequest = errors.New("invalid game request")
)

// NewGameRequest is the payload of the new game form.
type NewGameRequest struct {
	Game  string `json:"game"`
	Color string `json:"color"`
	Draw  string `json:"draw"`
	// Seed replays a specific deal when set.
	Seed *int64 `json:"seed,omitempty"`
}

// DrawCountFor maps a draw option label to a draw count. Unknown labels
// fall back to fallback, or to 1 when fallback is not a legal draw count.
func DrawCountFor(label string, fallback int) int {
	switch strings.TrimSpace(label) {
	case DrawOneLabel:
		return 1
	case DrawThreeLabel:
		return 3
	}
	if domain.ValidDrawCount(fallback) {
		return fallback
	}
	return 1
}

// Policy returns the score policy used by the service.
func (s *Service) Policy() domain.ScorePolicy {
	return s.policy
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Shuffle returns a fresh shuffled deck.
func (s *Service) Shuffle() []domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Shuffle(s.rng)
}

// StartGame deals a new game for owner. defaultDraw applies when the request
// names no draw option.
func (s *Service) StartGame(owner string, req NewGameRequest, defaultDraw int) (*domain.Game, []Event, error) {
	if owner == "" {
		return nil, nil, ErrMissingOwner
	}
	color := strings.ToLower(strings.TrimSpace(req.Color))
	if color == "" {
		return nil, nil, fmt.Errorf("%w: color is required", ErrInvalidGameRequest)
	}
	gameType := strings.ToLower(strings.TrimSpace(req.Game))
	if gameType == "" {
		gameType = DefaultGameType
	}

	var deck []domain.Card
	if req.Seed != nil {
		deck = domain.SeededDeck(*req.Seed)
	} else {
		deck = s.Shuffle()
	}
	drawCount := DrawCountFor(req.Draw, defaultDraw)
	state, err := domain.Deal(deck, drawCount)
	if err != nil {
		return nil, nil, fmt.Errorf("deal: %w", err)
	}

	game := &domain.Game{
		ID:        s.newID(),
		Owner:     owner,
		GameType:  gameType,
		Color:     color,
		DrawCount: drawCount,
		Start:     s.now().UTC(),
		State:     state,
		Moves:     []domain.MoveRecord{},
	}
	game.Refresh(s.policy)

	events := []Event{
		{
			Kind: EventGameCreated,
			Payload: GameCreatedPayload{
				GameID:    game.ID,
				Owner:     owner,
				DrawCount: drawCount,
			},
			Recipients: []string{owner},
		},
	}
	return game, events, nil
}

// MakeMove validates and applies a move to game on behalf of actor. player is
// the name written to the move log. A rejected move leaves game untouched and
// returns the rejection.
func (s *Service) MakeMove(game *domain.Game, actor, player string, move domain.Move) ([]Event, error) {
	if actor != game.Owner {
		return nil, ErrNotOwner
	}
	if !game.Active {
		return nil, ErrGameOver
	}

	t, err := domain.ApplyMoveDetailed(game.State, move)
	if err != nil {
		return nil, err
	}
	game.State = t.State

	now := s.now().UTC()
	record := domain.MoveRecord{
		Cards:  t.Moved,
		Src:    move.Src,
		Dst:    move.Dst,
		Date:   now,
		Player: player,
	}
	if len(t.Moved) > 0 || t.Recycled {
		game.Moves = append(game.Moves, record)
	}
	sum := game.Refresh(s.policy)

	events := []Event{
		{
			Kind: EventMoveApplied,
			Payload: MoveAppliedPayload{
				GameID:      game.ID,
				Record:      record,
				Description: domain.DescribeMove(record),
				Recycled:    t.Recycled,
				View:        domain.Project(game.State, s.policy),
			},
		},
	}

	if !sum.Active {
		game.Winner = player
		game.End = now
		events = append(events, Event{
			Kind: EventGameWon,
			Payload: GameWonPayload{
				GameID:   game.ID,
				Winner:   player,
				Score:    game.Score,
				Moves:    len(game.Moves),
				Duration: game.End.Sub(game.Start),
			},
		})
	}

	return events, nil
}

// View projects the current state of game.
func (s *Service) View(game *domain.Game) domain.ClientView {
	return domain.Project(game.State, s.policy)
}
