package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
	BotLevelGod
)

// ParseLevel maps a config name onto a BotLevel.
func ParseLevel(name string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "good", "easy":
		return BotLevelGood, nil
	case "smart", "medium", "":
		return BotLevelSmart, nil
	case "god", "hard":
		return BotLevelGod, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	case BotLevelGod:
		return NewGodBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
