package domain

import "time"

// Game is a persisted Klondike game: the current state plus its history.
type Game struct {
	ID             string       `json:"id"`
	Owner          string       `json:"owner"`
	GameType       string       `json:"game"`
	Color          string       `json:"color"`
	DrawCount      int          `json:"drawCount"`
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end,omitzero"`
	Active         bool         `json:"active"`
	Winner         string       `json:"winner"`
	Score          int          `json:"score"`
	CardsRemaining int          `json:"cards_remaining"`
	State          GameState    `json:"state"`
	Moves          []MoveRecord `json:"moves"`
}

// GameProfile is the summary of a game shown in game lists and profiles.
type GameProfile struct {
	ID             string `json:"id"`
	GameType       string `json:"game"`
	Color          string `json:"color"`
	DrawCount      int    `json:"drawCount"`
	Start          int64  `json:"start"`
	Duration       int64  `json:"duration"`
	Moves          int    `json:"moves"`
	Score          int    `json:"score"`
	CardsRemaining int    `json:"cards_remaining"`
	Active         bool   `json:"active"`
	Winner         string `json:"winner"`
}

// ProjectGame summarizes g. Duration is in milliseconds and runs to now for
// games still in progress.
func ProjectGame(g *Game, now time.Time) GameProfile {
	end := g.End
	if g.Active || end.IsZero() {
		end = now
	}
	duration := end.Sub(g.Start).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	return GameProfile{
		ID:             g.ID,
		GameType:       g.GameType,
		Color:          g.Color,
		DrawCount:      g.DrawCount,
		Start:          g.Start.UnixMilli(),
		Duration:       duration,
		Moves:          len(g.Moves),
		Score:          g.Score,
		CardsRemaining: g.CardsRemaining,
		Active:         g.Active,
		Winner:         g.Winner,
	}
}

// Refresh recomputes the derived fields of g from its state.
func (g *Game) Refresh(policy ScorePolicy) Summary {
	sum := Summarize(g.State, policy)
	g.CardsRemaining = sum.CardsRemaining
	g.Score = sum.Score
	g.Active = sum.Active
	return sum
}
