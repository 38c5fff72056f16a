package nakama

import (
	"context"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// accountModule is the slice of runtime.NakamaModule the account adapter uses.
type accountModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk accountModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk accountModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile updates the account username and display name in Nakama.
// userID identifies the account to update; username/displayName are applied as provided.
// Returns an error if the Nakama update fails.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

// Username returns the account's username.
func (a *NakamaAccountAdapter) Username(ctx context.Context, userID string) (string, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get account: %w", err)
	}
	if account.GetUser() == nil {
		return "", fmt.Errorf("account %s has no user", userID)
	}
	return account.GetUser().GetUsername(), nil
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
