package games

import (
	"context"
	"errors"
	"fmt"

	"klondike/internal/app"
	"klondike/internal/bot"
	"klondike/internal/domain"
	"klondike/internal/ports"
)

const (
	defaultMoveRetries   = 3
	defaultAutoplayLimit = 52
)

// Deps are the collaborators of Service. Leaderboard, Economy and Spectators
// may be nil; the matching feature is then skipped or refused.
type Deps struct {
	Core        *app.Service
	Store       ports.GameStore
	Players     ports.PlayerPort
	Accounts    ports.AccountPort
	Leaderboard ports.LeaderboardPort
	Economy     ports.EconomyPort
	Spectators  *app.SpectatorService
}

// Options tune Service behavior.
type Options struct {
	DefaultDrawCount int
	// MoveRetries bounds how often a move is retried after losing a version check.
	MoveRetries   int
	AutoplayLimit int
	HintLevel     bot.BotLevel
	// RewardCoins is paid into the owner's wallet when a game is won.
	RewardCoins int64
}

// Service runs persisted Klondike games: it loads a game, lets app.Service
// apply the change and writes the result back under an optimistic version check.
type Service struct {
	core        *app.Service
	store       ports.GameStore
	players     ports.PlayerPort
	accounts    ports.AccountPort
	leaderboard ports.LeaderboardPort
	economy     ports.EconomyPort
	spectators  *app.SpectatorService
	hints       *bot.Pool
	opts        Options
}

var (
	ErrNotConfigured      = errors.New("games service not configured")
	ErrSpectatingDisabled = errors.New("spectating is not configured")
)

// NewService constructs a Service. Core, Store and Players are required.
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Core == nil || deps.Store == nil || deps.Players == nil {
		return nil, ErrNotConfigured
	}
	if opts.MoveRetries <= 0 {
		opts.MoveRetries = defaultMoveRetries
	}
	if opts.AutoplayLimit <= 0 {
		opts.AutoplayLimit = defaultAutoplayLimit
	}
	if !domain.ValidDrawCount(opts.DefaultDrawCount) {
		opts.DefaultDrawCount = 1
	}
	hints, err := bot.NewPool(opts.HintLevel, 0)
	if err != nil {
		return nil, err
	}
	return &Service{
		core:        deps.Core,
		store:       deps.Store,
		players:     deps.Players,
		accounts:    deps.Accounts,
		leaderboard: deps.Leaderboard,
		economy:     deps.Economy,
		spectators:  deps.Spectators,
		hints:       hints,
		opts:        opts,
	}, nil
}

// MoveResult is the outcome of a persisted change to a game.
type MoveResult struct {
	Game   *domain.Game
	Events []app.Event
	// SettlementErr is set when a won game could not be fully settled
	// (leaderboard, wallet or player record). The move itself was saved.
	SettlementErr error
}

// ListResult is the owner's game index with totals.
type ListResult struct {
	Games     []domain.GameProfile `json:"games"`
	Won       int                  `json:"won"`
	BestScore int                  `json:"best_score"`
	// Coins is the owner's wallet balance, zero without an economy.
	Coins int64 `json:"coins"`
}

// Create deals and stores a new game for owner.
func (s *Service) Create(ctx context.Context, owner string, req app.NewGameRequest) (*domain.Game, []app.Event, error) {
	game, events, err := s.core.StartGame(owner, req, s.opts.DefaultDrawCount)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to store game: %w", err)
	}
	return game, events, nil
}

// Get loads a game for viewer. Anyone other than the owner needs a spectator
// token issued for this game.
func (s *Service) Get(ctx context.Context, gameID, viewer, token string) (*domain.Game, error) {
	game, err := s.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(game.ID, game.Owner, viewer, token); err != nil {
		return nil, err
	}
	return game, nil
}

// Load returns the stored game without any access check.
func (s *Service) Load(ctx context.Context, gameID string) (*domain.Game, error) {
	game, _, err := s.store.LoadGame(ctx, gameID)
	return game, err
}

// View is Get projected to the client view.
func (s *Service) View(ctx context.Context, gameID, viewer, token string) (domain.ClientView, error) {
	game, err := s.Get(ctx, gameID, viewer, token)
	if err != nil {
		return domain.ClientView{}, err
	}
	return s.core.View(game), nil
}

// Authorize reports whether viewer may watch the game owned by owner.
func (s *Service) Authorize(gameID, owner, viewer, token string) error {
	if viewer != "" && viewer == owner {
		return nil
	}
	if token == "" || s.spectators == nil {
		return app.ErrNotOwner
	}
	if _, err := s.spectators.VerifyToken(token, gameID); err != nil {
		return err
	}
	return nil
}

// Move applies move to the stored game on behalf of actor.
func (s *Service) Move(ctx context.Context, gameID, actor string, move domain.Move) (MoveResult, error) {
	return s.mutate(ctx, gameID, actor, func(game *domain.Game, player string) ([]app.Event, error) {
		return s.core.MakeMove(game, actor, player, move)
	})
}

// Autoplay sends every card that can go to a foundation, one recorded move at a time.
func (s *Service) Autoplay(ctx context.Context, gameID, actor string) (MoveResult, error) {
	return s.mutate(ctx, gameID, actor, func(game *domain.Game, player string) ([]app.Event, error) {
		if actor != game.Owner {
			return nil, app.ErrNotOwner
		}
		var events []app.Event
		for _, step := range bot.AutoFinish(game.State, s.opts.AutoplayLimit) {
			evs, err := s.core.MakeMove(game, actor, player, step.Move)
			if err != nil {
				return nil, err
			}
			events = append(events, evs...)
		}
		return events, nil
	})
}

// PlayOut lets the hint brain play the owner's game for up to AutoplayLimit
// moves. It stops early when the brain sees nothing worth playing.
func (s *Service) PlayOut(ctx context.Context, gameID, actor string) (MoveResult, error) {
	return s.mutate(ctx, gameID, actor, func(game *domain.Game, player string) ([]app.Event, error) {
		if actor != game.Owner {
			return nil, app.ErrNotOwner
		}
		if !game.Active {
			return nil, app.ErrGameOver
		}
		steps, err := s.hints.PlayOut(game.ID, game.State, s.opts.AutoplayLimit)
		if err != nil {
			return nil, err
		}
		var events []app.Event
		for _, step := range steps {
			evs, err := s.core.MakeMove(game, actor, player, step.Move)
			if err != nil {
				return nil, err
			}
			events = append(events, evs...)
		}
		return events, nil
	})
}

// mutate runs fn against a freshly loaded game and saves it, retrying when
// another writer got there first. fn returning no events means nothing changed.
func (s *Service) mutate(ctx context.Context, gameID, actor string, fn func(game *domain.Game, player string) ([]app.Event, error)) (MoveResult, error) {
	player := s.username(ctx, actor)

	for attempt := 1; ; attempt++ {
		game, version, err := s.store.LoadGame(ctx, gameID)
		if err != nil {
			return MoveResult{}, err
		}
		wasActive := game.Active

		events, err := fn(game, player)
		if err != nil {
			return MoveResult{}, err
		}
		if len(events) == 0 {
			return MoveResult{Game: game}, nil
		}

		if _, err := s.store.SaveGame(ctx, game, version); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				if attempt < s.opts.MoveRetries {
					continue
				}
				return MoveResult{}, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
			}
			return MoveResult{}, fmt.Errorf("failed to save game: %w", err)
		}

		result := MoveResult{Game: game, Events: events}
		if wasActive && !game.Active {
			s.hints.Forget(game.ID)
			result.SettlementErr = s.settle(ctx, game, player)
		}
		return result, nil
	}
}

// settle pays out a won game. Every step is attempted; failures are joined.
func (s *Service) settle(ctx context.Context, game *domain.Game, player string) error {
	var errs []error
	metadata := map[string]interface{}{
		"game_id":    game.ID,
		"draw_count": game.DrawCount,
		"moves":      len(game.Moves),
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.SubmitScore(ctx, game.Owner, player, int64(game.Score), metadata); err != nil {
			errs = append(errs, fmt.Errorf("leaderboard: %w", err))
		}
	}

	if s.economy != nil && s.opts.RewardCoins > 0 {
		updates := []ports.WalletUpdate{
			{
				UserID: game.Owner,
				Amount: s.opts.RewardCoins,
				Metadata: map[string]interface{}{
					"reason":  "game_won",
					"game_id": game.ID,
				},
			},
		}
		if err := s.economy.UpdateBalances(ctx, updates); err != nil {
			errs = append(errs, fmt.Errorf("reward: %w", err))
		}
	}

	if err := s.players.RecordWin(ctx, game.Owner, game.Score); err != nil {
		errs = append(errs, fmt.Errorf("player record: %w", err))
	}

	return errors.Join(errs...)
}

// Hint suggests the next move for the owner. ok is false when no move is worth playing.
func (s *Service) Hint(ctx context.Context, gameID, actor string) (domain.Move, bool, error) {
	game, _, err := s.store.LoadGame(ctx, gameID)
	if err != nil {
		return domain.Move{}, false, err
	}
	if actor != game.Owner {
		return domain.Move{}, false, app.ErrNotOwner
	}
	if !game.Active {
		return domain.Move{}, false, app.ErrGameOver
	}

	return s.hints.Hint(game.ID, game.State)
}

// List returns the owner's game profiles in creation order with their totals.
func (s *Service) List(ctx context.Context, owner string) (ListResult, error) {
	if owner == "" {
		return ListResult{}, app.ErrMissingOwner
	}
	games, err := s.store.ListGames(ctx, owner)
	if err != nil {
		return ListResult{}, err
	}
	record, err := s.players.LoadPlayer(ctx, owner)
	if err != nil {
		return ListResult{}, err
	}

	now := s.core.Now()
	profiles := make([]domain.GameProfile, 0, len(games))
	for _, g := range games {
		profiles = append(profiles, domain.ProjectGame(g, now))
	}
	result := ListResult{
		Games:     profiles,
		Won:       record.Won,
		BestScore: record.BestScore,
	}
	if s.economy != nil {
		if result.Coins, err = s.economy.Balance(ctx, owner); err != nil {
			return ListResult{}, fmt.Errorf("failed to read wallet: %w", err)
		}
	}
	return result, nil
}

// SpectatorToken issues a token letting others watch the owner's game.
func (s *Service) SpectatorToken(ctx context.Context, gameID, owner string) (string, error) {
	if s.spectators == nil {
		return "", ErrSpectatingDisabled
	}
	game, _, err := s.store.LoadGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	if owner != game.Owner {
		return "", app.ErrNotOwner
	}
	return s.spectators.GenerateToken(game.ID, game.Owner)
}

func (s *Service) username(ctx context.Context, userID string) string {
	if s.accounts == nil || userID == "" {
		return userID
	}
	name, err := s.accounts.Username(ctx, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}
