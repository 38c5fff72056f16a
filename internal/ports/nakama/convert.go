package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"klondike/internal/app"
	"klondike/internal/app/games"
	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/grpc/codes"
)

// Status codes Nakama passes through to clients.
const (
	codeInvalidArgument    = int(codes.InvalidArgument)
	codeNotFound           = int(codes.NotFound)
	codePermissionDenied   = int(codes.PermissionDenied)
	codeFailedPrecondition = int(codes.FailedPrecondition)
	codeAborted            = int(codes.Aborted)
	codeInternal           = int(codes.Internal)
	codeUnauthenticated    = int(codes.Unauthenticated)
)

var errNoUserID = errors.New("no user id in context")

// toRuntimeError maps service errors onto runtime errors with a gRPC code.
// Rejections keep their reason as a message prefix so clients can switch on it.
func toRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := domain.ReasonOf(err); ok {
		return runtime.NewError(fmt.Sprintf("%s: %s", reason, err.Error()), codeInvalidArgument)
	}

	switch {
	case errors.Is(err, app.ErrInvalidGameRequest), errors.Is(err, errBadPayload):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	case errors.Is(err, ports.ErrGameNotFound):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, app.ErrNotOwner), errors.Is(err, app.ErrInvalidSpectatorToken):
		return runtime.NewError(err.Error(), codePermissionDenied)
	case errors.Is(err, app.ErrGameOver), errors.Is(err, games.ErrSpectatingDisabled):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	case errors.Is(err, ports.ErrVersionConflict):
		return runtime.NewError(err.Error(), codeAborted)
	case errors.Is(err, errNoUserID), errors.Is(err, app.ErrMissingOwner):
		return runtime.NewError(err.Error(), codeUnauthenticated)
	default:
		return runtime.NewError("internal error", codeInternal)
	}
}

var errBadPayload = errors.New("invalid payload")

// decodePayload unmarshals an RPC payload. An empty payload leaves v untouched.
func decodePayload(payload string, v interface{}) error {
	if payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

func encodeResponse(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(data), nil
}

func userIDFromContext(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errNoUserID
	}
	return userID, nil
}

// envValue reads a runtime env entry, returning "" when the env is absent.
func envValue(ctx context.Context, key string) string {
	env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if !ok {
		return ""
	}
	return env[key]
}
