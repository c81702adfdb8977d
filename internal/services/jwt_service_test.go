package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_very_secret_jwt_key_here"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService([]byte(testSecret), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService(nil, time.Hour)
	assert.Error(t, err)

	s, err := NewTokenService([]byte(testSecret), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, s.TTL())
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := newTestTokenService(t, clock)

	token, err := s.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenService_Expiry(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: issuedAt}
	s := newTestTokenService(t, clock)

	token, err := s.Issue(1)
	require.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour - time.Second)
	_, err = s.Verify(token)
	assert.NoError(t, err, "token should still be valid just before expiry")

	clock.now = issuedAt.Add(time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	clock.now = issuedAt.Add(2 * time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_VerifyFailures(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestTokenService(t, clock)

	t.Run("missing token", func(t *testing.T) {
		_, err := s.Verify("")
		assert.ErrorIs(t, err, ErrTokenMissing)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := s.Verify("invalid.jwt.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other, err := NewTokenService([]byte("another_secret"), time.Hour, WithClock(clock.Now))
		require.NoError(t, err)
		token, err := other.Issue(1)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := s.Issue(1)
		require.NoError(t, err)
		forged, err := s.Issue(2)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		tampered := strings.Join([]string{parts[0], forgedParts[1], parts[2]}, ".")

		_, err = s.Verify(tampered)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := &Claims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := &Claims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing identity", func(t *testing.T) {
		token, err := s.Issue(0)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
