package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"klondike/internal/app/onboarding"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// onboardingModule is what the device hook needs from runtime.NakamaModule.
type onboardingModule interface {
	accountModule
	storageModule
}

// AfterAuthenticateDevice gives freshly created accounts a friendly name and an
// empty player record.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	return onboardDevice(ctx, logger, nk, out)
}

func onboardDevice(ctx context.Context, logger runtime.Logger, nk onboardingModule, session *api.Session) error {
	if session == nil || !session.Created {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		// The context has no user yet on authentication hooks.
		var err error
		if userID, err = extractUserIDFromToken(session.Token); err != nil {
			logger.Error("AfterAuthenticateDevice: cannot resolve new player: %v", err)
			return err
		}
	}

	logger.Info("AfterAuthenticateDevice: onboarding player %s", userID)
	service := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaStorageAdapter(nk), nil)
	result, err := service.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("AfterAuthenticateDevice: display name not set for %s: %v", userID, result.ProfileUpdateErr)
	}
	if err != nil {
		logger.Error("AfterAuthenticateDevice: onboarding failed for %s: %v", userID, err)
		return err
	}
	if !result.RecordCreated {
		logger.Info("AfterAuthenticateDevice: player record for %s already exists", userID)
	}
	return nil
}

// extractUserIDFromToken reads the uid claim of a session token Nakama has just issued.
func extractUserIDFromToken(token string) (string, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("session token has unexpected claims")
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", errors.New("session token has no uid claim")
	}
	return uid, nil
}
