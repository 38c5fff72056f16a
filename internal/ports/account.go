package ports

import "context"

// AccountPort defines the interface for account profile reads and updates.
type AccountPort interface {
	// UpdateProfile sets username and display name for a user.
	// Returns an error if the update fails.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
	// Username returns the username recorded in move logs and leaderboards.
	// Returns an error if the account cannot be read.
	Username(ctx context.Context, userID string) (string, error)
}
