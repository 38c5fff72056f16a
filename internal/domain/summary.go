package domain

import (
	"fmt"
	"time"
)

// Summary is the derived completion metrics of a state.
type Summary struct {
	CardsRemaining int  `json:"cards_remaining"`
	Active         bool `json:"active"`
	Score          int  `json:"score"`
}

// ScorePolicy turns a state into a score. Implementations must not decrease
// when foundation cards are added.
type ScorePolicy interface {
	Score(state *GameState) int
}

// ScoreFunc adapts a plain function to ScorePolicy.
type ScoreFunc func(state *GameState) int

func (f ScoreFunc) Score(state *GameState) int { return f(state) }

// FoundationScore awards points per foundation card plus a bonus on completion.
type FoundationScore struct {
	PointsPerCard int
	WinBonus      int
}

// DefaultScorePolicy is used when Summarize is given a nil policy.
var DefaultScorePolicy = FoundationScore{PointsPerCard: 10}

func (p FoundationScore) Score(state *GameState) int {
	score := state.FoundationCount() * p.PointsPerCard
	if state.IsWon() {
		score += p.WinBonus
	}
	return score
}

// Summarize computes the completion metrics of state.
func Summarize(state GameState, policy ScorePolicy) Summary {
	if policy == nil {
		policy = DefaultScorePolicy
	}
	remaining := state.CardsRemaining()
	return Summary{
		CardsRemaining: remaining,
		Active:         remaining > 0,
		Score:          policy.Score(&state),
	}
}

// MoveRecord is an accepted move as kept in a game's move log.
type MoveRecord struct {
	Cards  []Card    `json:"cards"`
	Src    PileID    `json:"src"`
	Dst    PileID    `json:"dst"`
	Date   time.Time `json:"date"`
	Player string    `json:"player"`
}

// DescribeMove renders a move log entry for results pages.
func DescribeMove(rec MoveRecord) string {
	card := "no card"
	if len(rec.Cards) > 0 {
		card = rec.Cards[0].String()
	}

	switch {
	case rec.Dst.IsFoundation():
		return fmt.Sprintf("Moved %s to foundation %d", card, rec.Dst.Index)
	case rec.Dst.IsTableau() && rec.Src.IsTableau():
		return fmt.Sprintf("Moved %d cards from tableau %d to tableau %d", len(rec.Cards), rec.Src.Index, rec.Dst.Index)
	case rec.Dst.IsTableau() && rec.Src.IsFoundation():
		return fmt.Sprintf("Moved %s from foundation %d to tableau %d", card, rec.Src.Index, rec.Dst.Index)
	case rec.Dst.IsTableau():
		return fmt.Sprintf("Moved %s from stock to tableau %d", card, rec.Dst.Index)
	case rec.Src.Kind == KindDraw && len(rec.Cards) == 0:
		return "Recycled discard pile"
	case rec.Src.Kind == KindDraw:
		return fmt.Sprintf("Drew %s from draw pile", card)
	}
	return ""
}

// MoveStats aggregates a move log.
type MoveStats struct {
	Total        int            `json:"total"`
	Draws        int            `json:"draws"`
	Recycles     int            `json:"recycles"`
	ToFoundation int            `json:"to_foundation"`
	ToTableau    int            `json:"to_tableau"`
	ByPlayer     map[string]int `json:"by_player"`
}

// SummarizeMoves counts moves by kind and by player.
func SummarizeMoves(records []MoveRecord) MoveStats {
	stats := MoveStats{ByPlayer: make(map[string]int)}
	for _, rec := range records {
		stats.Total++
		stats.ByPlayer[rec.Player]++
		switch {
		case rec.Src.Kind == KindDraw && len(rec.Cards) == 0:
			stats.Recycles++
		case rec.Src.Kind == KindDraw:
			stats.Draws++
		case rec.Dst.IsFoundation():
			stats.ToFoundation++
		case rec.Dst.IsTableau():
			stats.ToTableau++
		}
	}
	return stats
}
