package nakama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"klondike/internal/app"
	"klondike/internal/app/games"
	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

func TestToRuntimeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "Rejection", err: domain.ErrTableauColorConflict, code: codeInvalidArgument},
		{name: "Wrapped rejection", err: fmt.Errorf("move: %w", domain.ErrEmptyMove), code: codeInvalidArgument},
		{name: "Bad request", err: fmt.Errorf("%w: color is required", app.ErrInvalidGameRequest), code: codeInvalidArgument},
		{name: "Bad payload", err: decodePayload("{", &struct{}{}), code: codeInvalidArgument},
		{name: "Missing game", err: fmt.Errorf("%w: g1", ports.ErrGameNotFound), code: codeNotFound},
		{name: "Not owner", err: app.ErrNotOwner, code: codePermissionDenied},
		{name: "Bad token", err: fmt.Errorf("%w: expired", app.ErrInvalidSpectatorToken), code: codePermissionDenied},
		{name: "Game over", err: app.ErrGameOver, code: codeFailedPrecondition},
		{name: "Spectating off", err: games.ErrSpectatingDisabled, code: codeFailedPrecondition},
		{name: "Conflict", err: fmt.Errorf("gave up after 3 attempts: %w", ports.ErrVersionConflict), code: codeAborted},
		{name: "No user", err: errNoUserID, code: codeUnauthenticated},
		{name: "Unknown", err: errors.New("disk on fire"), code: codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rtErr *runtime.Error
			if !errors.As(toRuntimeError(tt.err), &rtErr) {
				t.Fatalf("expected *runtime.Error for %v", tt.err)
			}
			if rtErr.Code != tt.code {
				t.Errorf("code = %d, want %d", rtErr.Code, tt.code)
			}
		})
	}

	if toRuntimeError(nil) != nil {
		t.Error("nil error should stay nil")
	}

	wire := map[int]int{codeInvalidArgument: 3, codeNotFound: 5, codePermissionDenied: 7, codeFailedPrecondition: 9, codeAborted: 10, codeInternal: 13, codeUnauthenticated: 16}
	for got, want := range wire {
		if got != want {
			t.Errorf("status code %d, want %d", got, want)
		}
	}
}

func TestToRuntimeErrorKeepsReason(t *testing.T) {
	var rtErr *runtime.Error
	if !errors.As(toRuntimeError(domain.ErrFoundationRequiresAce), &rtErr) {
		t.Fatal("expected *runtime.Error")
	}
	if !strings.HasPrefix(rtErr.Message, string(domain.ReasonFoundationRequiresAce)+":") {
		t.Errorf("message = %q", rtErr.Message)
	}

	if !errors.As(toRuntimeError(errors.New("secret detail")), &rtErr) {
		t.Fatal("expected *runtime.Error")
	}
	if strings.Contains(rtErr.Message, "secret") {
		t.Errorf("internal detail leaked: %q", rtErr.Message)
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := userIDFromContext(context.Background()); !errors.Is(err, errNoUserID) {
		t.Errorf("expected errNoUserID, got %v", err)
	}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "u1")
	if id, err := userIDFromContext(ctx); err != nil || id != "u1" {
		t.Errorf("userIDFromContext = %q, %v", id, err)
	}
}

func TestEnvValue(t *testing.T) {
	if got := envValue(context.Background(), envSpectatorSecret); got != "" {
		t.Errorf("envValue without env = %q", got)
	}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{envSpectatorSecret: "s3cret"})
	if got := envValue(ctx, envSpectatorSecret); got != "s3cret" {
		t.Errorf("envValue = %q", got)
	}
}
