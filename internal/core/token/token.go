// Package token issues and validates the signed, self-contained session
// tokens used for authentication. Tokens are stateless: validity is fully
// determined by signature and expiry at verification time. There is no
// revocation list — rotating or losing the signing secret invalidates every
// outstanding token at once, which is an operational hazard to plan for, not
// a bug.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// ErrInvalidToken is the umbrella error for every expected validation
// failure. The three concrete kinds below all match it via errors.Is, so
// callers can treat any of them as "unauthenticated" without caring which.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
)

const defaultTTL = 24 * time.Hour

// Claims is the decoded content of a session token.
type Claims struct {
	Subject   string        `json:"subject"`
	Roles     []domain.Role `json:"roles"`
	IssuedAt  time.Time     `json:"issuedAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

type jwtClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a process-wide symmetric
// secret. It is stateless and safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token for subject carrying the given roles.
// Expiry is exactly issue time + TTL.
func (s *Service) Issue(subject string, roles []domain.Role) (string, error) {
	now := time.Now().UTC().Truncate(time.Second)

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	claims := jwtClaims{
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded claims.
// Failures are one of ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired;
// all of them match ErrInvalidToken.
func (s *Service) Validate(raw string) (*Claims, error) {
	var claims jwtClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrTokenMalformed
	}
	return claims.toClaims(), nil
}

// Decode parses the token WITHOUT verifying signature or expiry. It exists
// solely for diagnostic endpoints; its output must never be used to grant
// access.
func (s *Service) Decode(raw string) (*Claims, error) {
	var claims jwtClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims.toClaims(), nil
}

func (c *jwtClaims) toClaims() *Claims {
	roles := make([]domain.Role, len(c.Roles))
	for i, name := range c.Roles {
		roles[i] = domain.Role(name)
	}

	out := &Claims{
		Subject: c.Subject,
		Roles:   roles,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
