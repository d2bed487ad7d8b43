package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IdentityHidesSecrets(t *testing.T) {
	deleted := time.Now()
	creator := int64(1)
	user := &auth.User{
		ID:           2,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$secret",
		IsAdmin:      true,
		DeletedAt:    &deleted,
		Version:      3,
		CreatedByID:  &creator,
	}

	raw, err := json.Marshal(user.Identity())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "deleted")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, true, out["isAdmin"])
	assert.Equal(t, float64(3), out["version"])
	assert.Equal(t, float64(1), out["createdById"])

	raw, err = json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestIdentities(t *testing.T) {
	list := auth.Identities([]*auth.User{{ID: 1}, {ID: 2}})
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[1].ID)
	assert.Empty(t, auth.Identities(nil))
}
