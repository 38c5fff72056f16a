package nakama

import (
	"context"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// leaderboardModule is the slice of runtime.NakamaModule the leaderboard adapter uses.
type leaderboardModule interface {
	LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// NakamaLeaderboardAdapter implements ports.LeaderboardPort with a Nakama
// leaderboard keeping each owner's best score.
type NakamaLeaderboardAdapter struct {
	nk leaderboardModule
	id string
}

// NewNakamaLeaderboardAdapter creates an adapter writing to leaderboard id.
func NewNakamaLeaderboardAdapter(nk leaderboardModule, id string) *NakamaLeaderboardAdapter {
	return &NakamaLeaderboardAdapter{nk: nk, id: id}
}

// Ensure creates the leaderboard. Creating an existing leaderboard is a no-op in Nakama.
func (a *NakamaLeaderboardAdapter) Ensure(ctx context.Context) error {
	metadata := map[string]interface{}{"game": "klondike"}
	if err := a.nk.LeaderboardCreate(ctx, a.id, true, "desc", "best", "", metadata, true); err != nil {
		return fmt.Errorf("failed to create leaderboard %s: %w", a.id, err)
	}
	return nil
}

// SubmitScore writes score for ownerID; the "best" operator keeps the higher record.
func (a *NakamaLeaderboardAdapter) SubmitScore(ctx context.Context, ownerID, username string, score int64, metadata map[string]interface{}) error {
	if _, err := a.nk.LeaderboardRecordWrite(ctx, a.id, ownerID, username, score, 0, metadata, nil); err != nil {
		return fmt.Errorf("failed to write leaderboard record: %w", err)
	}
	return nil
}

var _ ports.LeaderboardPort = (*NakamaLeaderboardAdapter)(nil)
