package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

const walletCurrency = "coins"

// walletModule is the slice of runtime.NakamaModule the economy adapter uses.
type walletModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
type NakamaEconomyAdapter struct {
	nk walletModule
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk walletModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{
		nk: nk,
	}
}

// Balance reads the user's coin balance from the account wallet.
func (a *NakamaEconomyAdapter) Balance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if account.GetWallet() == "" {
		return 0, nil
	}
	if err := json.Unmarshal([]byte(account.GetWallet()), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[walletCurrency], nil
}

// UpdateBalances applies multiple wallet changes.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}

		changes := map[string]int64{
			walletCurrency: update.Amount,
		}

		_, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true)
		if err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", update.UserID, err)
		}
	}
	return nil
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
