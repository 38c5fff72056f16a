package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// SpectatorService issues and checks tokens that let a non-owner watch one game.
type SpectatorService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// SpectatorClaims is what a verified token grants.
type SpectatorClaims struct {
	GameID    string
	Owner     string
	ExpiresAt time.Time
}

var ErrInvalidSpectatorToken = errors.New("invalid spectator token")

const spectatorScope = "spectate"

func NewSpectatorService(secret, issuer string, ttl time.Duration) *SpectatorService {
	return &SpectatorService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateToken signs a token granting read access to gameID.
func (s *SpectatorService) GenerateToken(gameID, owner string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("spectator service is nil")
	}
	if gameID == "" || owner == "" {
		return "", fmt.Errorf("game id and owner are required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("spectator config is incomplete")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": owner,
		"gid": gameID,
		"scp": spectatorScope,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken checks signature, issuer, expiry and that the token was issued for gameID.
func (s *SpectatorService) VerifyToken(tokenString, gameID string) (SpectatorClaims, error) {
	if s == nil || s.secret == "" {
		return SpectatorClaims{}, fmt.Errorf("spectator service is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return SpectatorClaims{}, fmt.Errorf("%w: %v", ErrInvalidSpectatorToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SpectatorClaims{}, ErrInvalidSpectatorToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return SpectatorClaims{}, fmt.Errorf("%w: wrong issuer", ErrInvalidSpectatorToken)
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return SpectatorClaims{}, fmt.Errorf("%w: expired", ErrInvalidSpectatorToken)
	}
	if scope, _ := claims["scp"].(string); scope != spectatorScope {
		return SpectatorClaims{}, fmt.Errorf("%w: wrong scope", ErrInvalidSpectatorToken)
	}
	gid, _ := claims["gid"].(string)
	if gid != gameID {
		return SpectatorClaims{}, fmt.Errorf("%w: issued for another game", ErrInvalidSpectatorToken)
	}

	owner, _ := claims["sub"].(string)
	exp, _ := claims["exp"].(float64)
	return SpectatorClaims{
		GameID:    gid,
		Owner:     owner,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
