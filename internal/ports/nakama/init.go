package nakama

import (
	"context"
	"database/sql"
	"time"

	"klondike/internal/app"
	"klondike/internal/app/games"
	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	gameConfigPath = "data/game_config.json"

	devSpectatorSecret = "solitaire-dev-secret"
	devSpectatorIssuer = "solitaire"
)

// InitModule wires RPCs, the spectate match and hooks for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	core := app.NewService(nil, domain.FoundationScore{
		PointsPerCard: cfg.PointsPerFoundationCard,
		WinBonus:      cfg.WinBonus,
	})

	leaderboard := NewNakamaLeaderboardAdapter(nk, cfg.LeaderboardID)
	if err := leaderboard.Ensure(ctx); err != nil {
		logger.Error("InitModule: %v", err)
		return err
	}

	level, err := bot.ParseLevel(cfg.HintLevel)
	if err != nil {
		logger.Warn("InitModule: %v, hints use the smart bot", err)
		level = bot.BotLevelSmart
	}

	storage := NewNakamaStorageAdapter(nk)
	gameService, err := games.NewService(games.Deps{
		Core:        core,
		Store:       storage,
		Players:     storage,
		Accounts:    NewNakamaAccountAdapter(nk),
		Leaderboard: leaderboard,
		Economy:     NewNakamaEconomyAdapter(nk),
		Spectators:  newSpectatorService(ctx, logger, time.Duration(cfg.SpectatorTokenTTL)*time.Second),
	}, games.Options{
		DefaultDrawCount: cfg.DefaultDrawCount,
		MoveRetries:      cfg.MoveRetries,
		AutoplayLimit:    cfg.AutoplayLimit,
		HintLevel:        level,
		RewardCoins:      cfg.WinRewardCoins,
	})
	if err != nil {
		return err
	}

	module := NewModule(gameService, core, nk, cfg.DefaultDrawCount)
	if err := module.Register(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameSpectate, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(gameService, core, cfg.MatchTickRate, cfg.MatchIdleTicks), nil
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("Klondike Go module loaded.")
	return nil
}

// newSpectatorService reads the token secret and issuer from the runtime env.
func newSpectatorService(ctx context.Context, logger runtime.Logger, ttl time.Duration) *app.SpectatorService {
	secret := envValue(ctx, envSpectatorSecret)
	issuer := envValue(ctx, envSpectatorIssuer)
	if secret == "" {
		logger.Warn("InitModule: %s is not set, using a development secret", envSpectatorSecret)
		secret = devSpectatorSecret
	}
	if issuer == "" {
		issuer = devSpectatorIssuer
	}
	return app.NewSpectatorService(secret, issuer, ttl)
}
