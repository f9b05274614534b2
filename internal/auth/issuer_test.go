package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "2f9e5ab2-9a4e-4c6f-9b8e-0c2d1a3f4b5c",
		Email:    "cliente@example.com",
		Role:     domain.RoleBusinessOwner,
		Approved: true,
	}
}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("http://localhost:8080", []byte("test-secret"))

	tok, exp, err := iss.IssueAccess(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.WithinDuration(t, time.Now().Add(iss.AccessTTL), exp, 5*time.Second)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "2f9e5ab2-9a4e-4c6f-9b8e-0c2d1a3f4b5c", claims.Subject)
	require.Equal(t, domain.RoleBusinessOwner, claims.Role)
	require.True(t, claims.Approved)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := NewIssuer("http://localhost:8080", []byte("secret-a"))
	b := NewIssuer("http://localhost:8080", []byte("secret-b"))

	tok, _, err := a.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = b.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	a := NewIssuer("http://a.example", []byte("shared"))
	b := NewIssuer("http://b.example", []byte("shared"))

	tok, _, err := a.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = b.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("http://localhost:8080", []byte("secret"))
	iss.AccessTTL = -1 * time.Minute

	tok, _, err := iss.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	iss := NewIssuer("http://localhost:8080", []byte("secret"))
	_, err := iss.Parse("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
