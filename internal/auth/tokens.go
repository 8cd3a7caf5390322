package auth

import (
	"errors"
	"fmt"
	"time"

	"contestatii/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const Issuer = "contestatii"

var ErrInvalidToken = errors.New("invalid session token")

// Tokens issues and verifies the HS256 session tokens carried in the session
// cookie.
type Tokens struct {
	key   jwk.Key
	ttl   time.Duration
	clock func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to import token secret: %w", err)
	}

	return &Tokens{key: key, ttl: ttl, clock: time.Now}, nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

func (t *Tokens) Issue(user *types.User) (string, error) {
	now := t.clock()

	token, err := jwt.NewBuilder().
		Issuer(Issuer).
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Claim("name", user.Name).
		Claim("email", user.Email).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), t.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks signature, issuer and expiry and returns the identity the
// token was issued for.
func (t *Tokens) Verify(raw string) (*types.Identity, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), t.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(Issuer),
		jwt.WithClock(jwt.ClockFunc(t.clock)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	identity := &types.Identity{UserID: userID}

	// name and email are informational
	_ = token.Get("name", &identity.Name)
	_ = token.Get("email", &identity.Email)

	return identity, nil
}
