package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	signed, err := issuer.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	username, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// NewIssuer clamps non-positive TTLs to DefaultTTL, so force a negative
	// lifetime directly to issue an already-expired token.
	issuer := NewIssuer("test-secret", time.Hour)
	issuer.ttl = -time.Minute

	signed, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewIssuer("secret-one", time.Hour).Issue("alice")
	require.NoError(t, err)

	_, err = NewIssuer("secret-two", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestDefaultTTLIsApplied(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)
	assert.Equal(t, DefaultTTL, issuer.ttl)
}
