package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, err := iss.Issue("ana@example.com")
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestIssuer_RejectsBadTokens(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	other := NewIssuer("other-secret", time.Hour)

	token, err := other.Issue("ana@example.com")
	require.NoError(t, err)

	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestIssuer_Expiry(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	token, err := iss.Issue("ana@example.com")
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
}
