package helpers

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	maker := NewTokenMaker("secret", time.Hour)

	token, refresh, err := maker.GenerateAllTokens("ops@hotel.test", "Front Desk", "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)

	claims, err := maker.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Uid)
	assert.Equal(t, "ops@hotel.test", claims.Email)
}

func TestTokenMaker_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenMaker("secret", time.Hour).GenerateAllTokens("a@b.c", "A", "admin-1")
	require.NoError(t, err)

	_, err = NewTokenMaker("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenMaker_RejectsExpired(t *testing.T) {
	claim := SignedDetails{
		Uid:            "admin-1",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenMaker("secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenMaker_RejectsGarbage(t *testing.T) {
	_, err := NewTokenMaker("secret", time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	// minimum cost keeps the test fast; HashPassword uses cost 14
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, msg := VerifyPassword("s3cret!", string(hash))
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = VerifyPassword("wrong", string(hash))
	assert.False(t, ok)
	assert.Equal(t, "email or password is incorrect", msg)
}
