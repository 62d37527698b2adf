package sec_test

import (
	"testing"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-very-long-testing-secret"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := sec.NewTokenIssuer(testSecret, time.Minute)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(42, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer, err := sec.NewTokenIssuer(testSecret, time.Minute)
	require.NoError(t, err)
	other, err := sec.NewTokenIssuer("another-long-testing-secret", time.Minute)
	require.NoError(t, err)

	token, _, err := other.Issue(1, "user@example.com", "user")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer, err := sec.NewTokenIssuer(testSecret, time.Nanosecond)
	require.NoError(t, err)

	token, _, err := issuer.Issue(1, "user@example.com", "user")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	_, err := sec.NewTokenIssuer("short", time.Minute)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.VerifyPassword(hashed, "correct horse"))
	assert.False(t, sec.VerifyPassword(hashed, "wrong horse"))
}

func TestHashToken(t *testing.T) {
	assert.Len(t, sec.HashToken("abc"), 64)
	assert.Equal(t, sec.HashToken("abc"), sec.HashToken("abc"))
	assert.NotEqual(t, sec.HashToken("abc"), sec.HashToken("abd"))
}
