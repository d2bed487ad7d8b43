package auth_test

import (
	"strings"
	"testing"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := testHasher()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  auth.ErrNoEmptyString,
		},
		{
			name:     "Exactly 72 bytes",
			password: strings.Repeat("a", 72),
		},
		{
			name:     "Longer than 72 bytes",
			password: strings.Repeat("a", 73),
			wantErr:  auth.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, hasher.Verify(tt.password, hash))
		})
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	hasher := testHasher()

	a, err := hasher.Hash("same-password")
	require.NoError(t, err)
	b, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, hasher.Verify("same-password", a))
	assert.True(t, hasher.Verify("same-password", b))
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := testHasher()
	hash, err := hasher.Hash("testPassword123!")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		digest   string
		want     bool
	}{
		{"Matching password", "testPassword123!", hash, true},
		{"Wrong password", "wrongPassword", hash, false},
		{"Empty digest", "testPassword123!", "", false},
		{"Malformed digest", "testPassword123!", "not-a-digest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Verify(tt.password, tt.digest))
		})
	}
}

func TestBcryptHasher_Cost(t *testing.T) {
	assert.Equal(t, 4, testHasher().Cost())

	fallback := auth.NewBcryptHasher(0)
	assert.GreaterOrEqual(t, fallback.Cost(), bcrypt.DefaultCost)

	hash, err := testHasher().Hash("password")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
}

func TestBcryptHasher_DummyHash(t *testing.T) {
	hasher := testHasher()

	dummy := hasher.DummyHash()
	require.NotEmpty(t, dummy)
	assert.Equal(t, dummy, hasher.DummyHash())
	assert.False(t, hasher.Verify("anything", dummy))
}
