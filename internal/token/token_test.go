package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/biblio/internal/token"
	"github.com/naveenspark/biblio/internal/token/tokentest"
	"github.com/naveenspark/biblio/pkg/domain"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestDecodeValid(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := tokentest.Mint(t, "ada@uni.edu", "LECTOR", now.Add(time.Minute))

	p, err := token.NewCodec(token.WithClock(fixedClock(now))).Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{Email: "ada@uni.edu", Role: domain.RoleReader}, p)
}

func TestDecodeAdmin(t *testing.T) {
	raw := tokentest.Valid(t, "root@uni.edu", "ADMIN")

	p, err := token.NewCodec().Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role)
}

func TestDecodeExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := token.NewCodec(token.WithClock(fixedClock(now)))

	tests := []struct {
		name string
		exp  time.Time
	}{
		{"at boundary", now},
		{"one second ago", now.Add(-time.Second)},
		{"long ago", now.Add(-72 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, role := range []string{"ADMIN", "LECTOR"} {
				_, err := codec.Decode(tokentest.Mint(t, "ada@uni.edu", role, tt.exp))
				require.Error(t, err)
				assert.ErrorIs(t, err, token.ErrInvalidToken)
				assert.ErrorIs(t, err, token.ErrExpired)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	header := seg(`{"alg":"HS256","typ":"JWT"}`)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not a jwt", "hello"},
		{"two segments", "a.b"},
		{"garbage segments", "a.b.c"},
		{"payload not json", header + "." + seg("nope") + ".sig"},
		{"exp wrong type", header + "." + seg(`{"sub":"a@b","rol":"ADMIN","exp":"soon"}`) + ".sig"},
	}

	codec := token.NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.raw)
			require.ErrorIs(t, err, token.ErrInvalidToken)
			assert.NotErrorIs(t, err, token.ErrExpired)
		})
	}
}

func TestDecodeRejectsIncompleteClaims(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	sign := func(c token.Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
		require.NoError(t, err)
		return raw
	}

	tests := []struct {
		name   string
		claims token.Claims
	}{
		{"no expiry", token.Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{Subject: "a@b"}}},
		{"no subject", token.Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"unknown role", token.Claims{Role: "JANITOR", RegisteredClaims: jwt.RegisteredClaims{Subject: "a@b", ExpiresAt: exp}}},
		{"no role", token.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "a@b", ExpiresAt: exp}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.NewCodec().Decode(sign(tt.claims))
			assert.ErrorIs(t, err, token.ErrInvalidToken)
		})
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	raw := tokentest.Valid(t, "ada@uni.edu", "ADMIN")
	tampered := raw[:len(raw)-4] + "AAAA"

	p, err := token.NewCodec().Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "ada@uni.edu", p.Email)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	codec := token.NewCodec()

	got, ok := codec.ExpiresAt(tokentest.Mint(t, "a@b", "ADMIN", exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "ExpiresAt = %v, want %v", got, exp)

	_, ok = codec.ExpiresAt("garbage")
	assert.False(t, ok)
}
