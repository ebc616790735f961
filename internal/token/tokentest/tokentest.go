// Package tokentest mints credentials shaped like the backend's for tests.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/biblio/internal/token"
)

var secret = []byte("biblio-test-secret")

// Mint signs a credential for email with the given role claim and expiry.
func Mint(t testing.TB, email, role string, exp time.Time) string {
	t.Helper()
	claims := token.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return raw
}

// Valid mints a credential that expires an hour from now.
func Valid(t testing.TB, email, role string) string {
	t.Helper()
	return Mint(t, email, role, time.Now().Add(time.Hour))
}

// Expired mints a credential that expired an hour ago.
func Expired(t testing.TB, email, role string) string {
	t.Helper()
	return Mint(t, email, role, time.Now().Add(-time.Hour))
}
