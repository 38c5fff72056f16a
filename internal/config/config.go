package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds tunables read from data/game_config.json.
type GameConfig struct {
	DefaultDrawCount        int    `json:"default_draw_count"`
	PointsPerFoundationCard int    `json:"points_per_foundation_card"`
	WinBonus                int    `json:"win_bonus"`
	MoveRetries             int    `json:"move_retries"`
	SpectatorTokenTTL       int    `json:"spectator_token_ttl_seconds"`
	MatchTickRate           int    `json:"match_tick_rate"`
	// MatchIdleTicks is how many ticks a spectate match survives with nobody connected.
	MatchIdleTicks int    `json:"match_idle_ticks"`
	HintLevel      string `json:"hint_level"`
	AutoplayLimit  int    `json:"autoplay_limit"`
	LeaderboardID  string `json:"leaderboard_id"`
	WinRewardCoins int64  `json:"win_reward_coins"`
}

// Defaults returns the configuration used when no file is loaded or a field is unset.
func Defaults() GameConfig {
	return GameConfig{
		DefaultDrawCount:        1,
		PointsPerFoundationCard: 10,
		WinBonus:                500,
		MoveRetries:             3,
		SpectatorTokenTTL:       3600,
		MatchTickRate:           5,
		MatchIdleTicks:          300,
		HintLevel:               "smart",
		AutoplayLimit:           52,
		LeaderboardID:           "solitaire_high_scores",
		WinRewardCoins:          100,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Parse decodes a config document and fills unset fields from Defaults.
func Parse(data []byte) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.applyDefaults()
	if c.DefaultDrawCount != 1 && c.DefaultDrawCount != 3 {
		return nil, fmt.Errorf("default_draw_count must be 1 or 3, got %d", c.DefaultDrawCount)
	}
	return &c, nil
}

func (c *GameConfig) applyDefaults() {
	d := Defaults()
	if c.DefaultDrawCount == 0 {
		c.DefaultDrawCount = d.DefaultDrawCount
	}
	if c.PointsPerFoundationCard == 0 {
		c.PointsPerFoundationCard = d.PointsPerFoundationCard
	}
	if c.MoveRetries <= 0 {
		c.MoveRetries = d.MoveRetries
	}
	if c.SpectatorTokenTTL <= 0 {
		c.SpectatorTokenTTL = d.SpectatorTokenTTL
	}
	if c.MatchTickRate <= 0 {
		c.MatchTickRate = d.MatchTickRate
	}
	if c.MatchIdleTicks <= 0 {
		c.MatchIdleTicks = d.MatchIdleTicks
	}
	if c.HintLevel == "" {
		c.HintLevel = d.HintLevel
	}
	if c.AutoplayLimit <= 0 {
		c.AutoplayLimit = d.AutoplayLimit
	}
	if c.LeaderboardID == "" {
		c.LeaderboardID = d.LeaderboardID
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or Defaults when nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}
