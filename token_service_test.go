package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-todo-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAuthConfig struct {
	key    string
	hours  int
	issuer string
}

func (c testAuthConfig) GetSigningKey() string   { return c.key }
func (c testAuthConfig) GetContextKey() string   { return "" }
func (c testAuthConfig) GetTokenExpiration() int { return c.hours }
func (c testAuthConfig) GetAuthScheme() string   { return "" }
func (c testAuthConfig) GetIssuer() string       { return c.issuer }
func (c testAuthConfig) GetPasswordCost() int    { return 4 }

func newTokenService(t *testing.T, now func() time.Time) *auth.TokenServiceImpl {
	t.Helper()
	ts, err := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "test-issuer", nopLogger{})
	require.NoError(t, err)
	return ts.WithClock(now)
}

func TestNewTokenService(t *testing.T) {
	t.Run("requires a signing key", func(t *testing.T) {
		_, err := auth.NewTokenService(nil, time.Hour, "", nil)
		assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
	})

	t.Run("defaults ttl", func(t *testing.T) {
		ts, err := auth.NewTokenService([]byte("k"), 0, "", nil)
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultTokenExpiration, ts.TTL())
	})

	t.Run("from config in hours", func(t *testing.T) {
		ts, err := auth.NewTokenServiceFromConfig(testAuthConfig{key: "k", hours: 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Hour, ts.TTL())

		_, err = auth.NewTokenServiceFromConfig(testAuthConfig{hours: 3}, nil)
		assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := newTokenService(t, func() time.Time { return now })

	token, err := ts.Issue(&auth.Identity{ID: 42, Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ts.Verify(token)
	require.NoError(t, err)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Unix(), claims.IssuedAt().Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.Expires().Unix())
}

func TestTokenService_IssueRequiresIdentity(t *testing.T) {
	ts := newTokenService(t, time.Now)

	_, err := ts.Issue(nil)
	assert.ErrorIs(t, err, auth.ErrInternal)

	_, err = ts.Issue(&auth.Identity{})
	assert.ErrorIs(t, err, auth.ErrInternal)
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Now()
	ts := newTokenService(t, func() time.Time { return now })

	token, err := ts.Issue(&auth.Identity{ID: 1})
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = ts.Verify(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_Rejects(t *testing.T) {
	ts := newTokenService(t, time.Now)

	token, err := ts.Issue(&auth.Identity{ID: 7})
	require.NoError(t, err)

	parts := strings.Split(token, ".")

	other, err := auth.NewTokenService([]byte("another-key"), time.Hour, "test-issuer", nil)
	require.NoError(t, err)
	foreign, err := other.Issue(&auth.Identity{ID: 7})
	require.NoError(t, err)

	wrongIssuer, err := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "someone-else", nil)
	require.NoError(t, err)
	spoofed, err := wrongIssuer.Issue(&auth.Identity{ID: 7})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "7",
		"iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"iss": "test-issuer",
	})
	forever, err := noExp.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	nonNumeric, err := badSubject.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":              "",
		"garbage":            "not.a.jwt",
		"tampered payload":   parts[0] + "." + parts[1] + "x." + parts[2],
		"tampered signature": parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2])),
		"foreign key":        foreign,
		"wrong issuer":       spoofed,
		"alg none":           unsigned,
		"no expiration":      forever,
		"non numeric sub":    nonNumeric,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := ts.Verify(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
		})
	}
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// flipLastSextet xors mask into the value of the last base64url character
func flipLastSextet(token string, mask int) string {
	last := token[len(token)-1]
	idx := strings.IndexByte(base64URLAlphabet, last)
	return token[:len(token)-1] + string(base64URLAlphabet[idx^mask])
}

func TestTokenService_RejectsSignaturePaddingBits(t *testing.T) {
	ts := newTokenService(t, time.Now)

	for i := 0; i < 20; i++ {
		token, err := ts.Issue(&auth.Identity{ID: int64(i + 1)})
		require.NoError(t, err)

		for _, mask := range []int{1, 2} {
			mutated := flipLastSextet(token, mask)
			require.NotEqual(t, token, mutated)

			claims, err := ts.Verify(mutated)
			assert.Nil(t, claims, "mask %d on %s", mask, token)
			assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
		}
	}
}

func TestTokenService_VerifyTwice(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := newTokenService(t, func() time.Time { return now })

	token, err := ts.Issue(&auth.Identity{ID: 9, Username: "carol", IsAdmin: true})
	require.NoError(t, err)

	first, err := ts.Verify(token)
	require.NoError(t, err)
	second, err := ts.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
