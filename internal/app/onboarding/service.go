package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"klondike/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// RecordCreated is false when the player record already existed.
	RecordCreated bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	players  ports.PlayerPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/players must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, players ports.PlayerPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		players:  players,
		rng:      rng,
	}
}

// OnboardNewUser gives a new account a friendly name and an empty game index.
// Returns a Result with any non-fatal issues and an error if the player record cannot be created.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.players == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return Result{}, fmt.Errorf("userID is required")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	created, err := s.players.InitPlayer(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to create player record: %w", err)
	}
	result.RecordCreated = created

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Patient", "Lucky", "Steady", "Clever", "Quiet", "Calm", "Sharp", "Nimble", "Bold", "Keen"}
	nouns := []string{"Ace", "King", "Queen", "Knave", "Dealer", "Shuffler", "Stacker", "Joker", "Sharper", "Gambit"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
