package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "academy.test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWT()
	user := &models.User{ID: uuid.New(), Email: "coach@academy.test", Role: models.RoleCoach}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, userID, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleCoach, claims.Role)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestJWT()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := svc.GenerateTokenPair(&models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleStudent})
	require.NoError(t, err)

	svc.now = time.Now
	_, _, err = svc.ValidateAndExtractClaims(pair.AccessToken)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(&models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleStudent})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "academy.test"})
	_, _, err = other.ValidateAndExtractClaims(pair.AccessToken)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	tok, err = ExtractBearerToken(`"a.b.c"`)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	_, err = ExtractBearerToken("Basic xyz")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))

	a, err := GenerateResetToken()
	require.NoError(t, err)
	b, _ := GenerateResetToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
