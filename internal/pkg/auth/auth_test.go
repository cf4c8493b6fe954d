package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, "test", time.Hour)

	token, err := m.GenerateToken("u1", "ana@farm.test", "farmer")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "farmer", claims.Role)
	assert.Equal(t, "user:u1", claims.Subject)

	other := NewJWTManager("ffffffffffffffffffffffffffffffff", "test", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	m := NewJWTManager(testSecret, "test", time.Hour)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken("u1", "ana@farm.test", "farmer")
	require.NoError(t, err)

	assert.False(t, TokenExpired(token, issued.Add(30*time.Minute)))
	assert.True(t, TokenExpired(token, issued.Add(time.Hour)))
	assert.True(t, TokenExpired(token, issued.Add(48*time.Hour)))

	// opaque tokens are left alone
	assert.False(t, TokenExpired("t1", issued.Add(48*time.Hour)))
	assert.False(t, TokenExpired("", issued))
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
}

func TestPasswordManager(t *testing.T) {
	p := NewPasswordManager(bcrypt.MinCost)

	_, err := p.HashPassword("abc")
	assert.Error(t, err)

	hash, err := p.HashPassword("harvest-2026")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("harvest-2026", hash))
	assert.Error(t, p.VerifyPassword("harvest-2025", hash))
}
