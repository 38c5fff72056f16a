package ports

import "context"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing game currency.
type EconomyPort interface {
	// UpdateBalances applies multiple wallet changes.
	// This is used when a game is won to pay the completion reward.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
	// Balance returns the user's coin balance.
	Balance(ctx context.Context, userID string) (int64, error)
}
