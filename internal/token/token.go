// Package token decodes the bearer credential issued by the library backend.
//
// The signature is not checked: the backend is the trust boundary and
// re-validates every credential it receives. Decoding only extracts the
// principal and rejects credentials that are malformed or expired.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/biblio/pkg/domain"
)

var (
	// ErrInvalidToken is returned for any credential that cannot yield a principal.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpired accompanies ErrInvalidToken when the credential is past its expiry.
	// Callers holding a persisted copy must evict it.
	ErrExpired = errors.New("token expired")
)

// Claims is the claim set the backend embeds in its credentials.
type Claims struct {
	Role string `json:"rol"`
	jwt.RegisteredClaims
}

// Codec turns raw credentials into principals.
type Codec struct {
	parser *jwt.Parser
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a Codec.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode parses raw and returns the principal it carries.
// A credential whose expiry is at or before the current instant is expired.
func (c *Codec) Decode(raw string) (domain.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Principal{}, fmt.Errorf("%w: empty credential", ErrInvalidToken)
	}

	claims, err := c.Claims(raw)
	if err != nil {
		return domain.Principal{}, err
	}

	validator := jwt.NewValidator(jwt.WithExpirationRequired(), jwt.WithTimeFunc(c.now))
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpired)
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return domain.Principal{Email: claims.Subject, Role: role}, nil
}

// Claims extracts the claim set without validating it.
func (c *Codec) Claims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ExpiresAt reports the expiry instant of raw, if it has one.
func (c *Codec) ExpiresAt(raw string) (time.Time, bool) {
	claims, err := c.Claims(strings.TrimSpace(raw))
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
