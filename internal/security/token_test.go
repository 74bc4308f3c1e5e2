package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	company := "c-1"

	token, err := tm.GenerateAccessToken("u-1", "jan", "employee", &company)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "employee", claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, "c-1", *claims.CompanyID)
}

func TestTokenManager_Invalid(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("another-secret-another-secret-000", time.Hour)
		token, err := other.GenerateAccessToken("u-1", "jan", "admin", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		m := &tokenManager{
			secret: []byte(testSecret),
			expiry: time.Minute,
			now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
		}
		token, err := m.GenerateAccessToken("u-1", "jan", "admin", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("None algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{UserID: "u-1", Role: "admin"})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.ValidateToken(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Black123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Black123"))
	assert.False(t, CheckPassword(hash, "black123"))
}
