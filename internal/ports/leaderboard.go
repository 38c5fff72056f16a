package ports

import "context"

// LeaderboardPort records final scores of won games.
type LeaderboardPort interface {
	// SubmitScore writes score for the owner. Lower scores never replace a better record.
	SubmitScore(ctx context.Context, ownerID, username string, score int64, metadata map[string]interface{}) error
}
