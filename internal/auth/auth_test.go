package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfees/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Name:  "Ada Obi",
		Email: "ada@school.test",
		Role:  domain.RoleStudent,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("secret", time.Hour, "school-fees")
	require.NoError(t, err)

	token, expiresAt, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "ada@school.test", id.Email)
	assert.Equal(t, domain.RoleStudent, id.Role)
	assert.False(t, id.IsAdmin())
}

func TestParse_RejectsExpired(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("secret", time.Hour, "school-fees")
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenManager("secret", time.Hour, "school-fees")
	require.NoError(t, err)
	verifier, err := NewTokenManager("other", time.Hour, "school-fees")
	require.NoError(t, err)

	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("secret", time.Hour, "school-fees")
	require.NoError(t, err)

	claims := Claims{
		Role: string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "attacker",
			Issuer:    "school-fees",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("", time.Hour, "school-fees")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
