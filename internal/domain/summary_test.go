package domain

import (
	"testing"
	"time"
)

func TestSummarize_Policies(t *testing.T) {
	state := GameState{DrawCount: 1, Foundations: [FoundationPiles][]Card{{up(Hearts, Ace), up(Hearts, Two)}, {up(Clubs, Ace)}}}

	tests := []struct {
		name   string
		policy ScorePolicy
		want   int
	}{
		{name: "Default", policy: nil, want: 30},
		{name: "Five per card", policy: FoundationScore{PointsPerCard: 5, WinBonus: 100}, want: 15},
		{name: "Func", policy: ScoreFunc(func(s *GameState) int { return s.FoundationCount() * s.FoundationCount() }), want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Summarize(state, tt.policy)
			if sum.Score != tt.want {
				t.Errorf("score = %d, want %d", sum.Score, tt.want)
			}
			if sum.CardsRemaining != 49 || !sum.Active {
				t.Errorf("summary = %+v", sum)
			}
		})
	}
}

func TestFoundationScore_WinBonus(t *testing.T) {
	var state GameState
	for i, s := range Suits {
		for r := Ace; r <= King; r++ {
			state.Foundations[i] = append(state.Foundations[i], up(s, r))
		}
	}
	sum := Summarize(state, FoundationScore{PointsPerCard: 1, WinBonus: 48})
	if sum.Score != 100 || sum.Active || sum.CardsRemaining != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestDescribeMove(t *testing.T) {
	tests := []struct {
		name string
		rec  MoveRecord
		want string
	}{
		{
			name: "To foundation",
			rec:  MoveRecord{Src: Tableau(3), Dst: Foundation(2), Cards: []Card{up(Hearts, Queen)}},
			want: "Moved queen of Hearts to foundation 2",
		},
		{
			name: "Tableau run",
			rec:  MoveRecord{Src: Tableau(1), Dst: Tableau(4), Cards: []Card{up(Hearts, Queen), up(Spades, Jack)}},
			want: "Moved 2 cards from tableau 1 to tableau 4",
		},
		{
			name: "Discard to tableau",
			rec:  MoveRecord{Src: DiscardPile, Dst: Tableau(5), Cards: []Card{up(Diamonds, Nine)}},
			want: "Moved 9 of Diamonds from stock to tableau 5",
		},
		{
			name: "Foundation to tableau",
			rec:  MoveRecord{Src: Foundation(1), Dst: Tableau(5), Cards: []Card{up(Diamonds, Nine)}},
			want: "Moved 9 of Diamonds from foundation 1 to tableau 5",
		},
		{
			name: "Draw",
			rec:  MoveRecord{Src: DrawPile, Dst: DiscardPile, Cards: []Card{up(Clubs, Three)}},
			want: "Drew 3 of Clubs from draw pile",
		},
		{
			name: "Recycle",
			rec:  MoveRecord{Src: DrawPile, Dst: DiscardPile},
			want: "Recycled discard pile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeMove(tt.rec); got != tt.want {
				t.Errorf("DescribeMove() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeMoves(t *testing.T) {
	records := []MoveRecord{
		{Src: DrawPile, Dst: DiscardPile, Cards: []Card{up(Clubs, Three)}, Player: "ann"},
		{Src: DrawPile, Dst: DiscardPile, Player: "ann"},
		{Src: Tableau(1), Dst: Foundation(1), Cards: []Card{up(Hearts, Ace)}, Player: "ann"},
		{Src: DiscardPile, Dst: Tableau(2), Cards: []Card{up(Hearts, Nine)}, Player: "bo"},
	}
	stats := SummarizeMoves(records)
	if stats.Total != 4 || stats.Draws != 1 || stats.Recycles != 1 || stats.ToFoundation != 1 || stats.ToTableau != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByPlayer["ann"] != 3 || stats.ByPlayer["bo"] != 1 {
		t.Errorf("by player = %v", stats.ByPlayer)
	}
}

func TestProject_DoesNotAlias(t *testing.T) {
	state := freshDeal(t, 1)
	view := Project(state, nil)
	if view.CardsRemaining != 52 || view.DrawCount != 1 || len(view.Pile7) != 7 {
		t.Fatalf("view = %+v", view.Summary)
	}
	top := state.Tableau[6][6]
	view.Pile7[6] = up(Spades, Ace)
	view.Draw[0] = up(Spades, Ace)
	if state.Tableau[6][6] != top {
		t.Errorf("view aliases the tableau")
	}
	if state.Draw[0].Up {
		t.Errorf("view aliases the draw pile")
	}
}

func TestProjectGame(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &Game{
		ID:             "g1",
		GameType:       "klondike",
		Color:          "red",
		DrawCount:      3,
		Start:          start,
		Active:         true,
		Score:          40,
		CardsRemaining: 48,
		Moves:          make([]MoveRecord, 5),
	}

	profile := ProjectGame(g, start.Add(90*time.Second))
	if profile.Duration != 90000 || profile.Moves != 5 || profile.Start != start.UnixMilli() {
		t.Errorf("profile = %+v", profile)
	}

	g.Active = false
	g.End = start.Add(30 * time.Second)
	if got := ProjectGame(g, start.Add(time.Hour)).Duration; got != 30000 {
		t.Errorf("finished duration = %d", got)
	}
}
