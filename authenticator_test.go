package auth_test

import (
	"context"
	"errors"
	"testing"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()
	hasher := testHasher()

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	alice := &auth.User{ID: 5, Username: "alice", PasswordHash: hash}

	newAuther := func(store *MockUsers, tokens *MockTokenService, sink auth.ActivitySink) *auth.Auther {
		validator := auth.NewCredentialValidator(store, hasher).WithLogger(nopLogger{})
		return auth.NewAuthenticator(validator, tokens).
			WithLogger(nopLogger{}).
			WithActivitySink(sink)
	}

	t.Run("issues a token", func(t *testing.T) {
		store := new(MockUsers)
		tokens := new(MockTokenService)
		sink := &capturingSink{}

		store.On("GetByUsername", ctx, "alice").Return(alice, nil).Once()
		tokens.On("Issue", mock.MatchedBy(func(i *auth.Identity) bool {
			return i.ID == 5
		})).Return("signed.jwt.token", nil).Once()

		token, err := newAuther(store, tokens, sink).Login(ctx, "alice", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "signed.jwt.token", token)
		assert.Equal(t, []auth.ActivityEventType{auth.ActivityEventLoginSuccess}, sink.types())
		assert.Equal(t, int64(5), sink.events[0].UserID)
		tokens.AssertExpectations(t)
	})

	t.Run("records failures", func(t *testing.T) {
		store := new(MockUsers)
		tokens := new(MockTokenService)
		sink := &capturingSink{}

		store.On("GetByUsername", ctx, "alice").Return(alice, nil).Once()

		token, err := newAuther(store, tokens, sink).Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Empty(t, token)
		assert.Equal(t, []auth.ActivityEventType{auth.ActivityEventLoginFailure}, sink.types())
		assert.Equal(t, "alice", sink.events[0].Metadata["username"])
		tokens.AssertNotCalled(t, "Issue", mock.Anything)
	})

	t.Run("issue failure", func(t *testing.T) {
		store := new(MockUsers)
		tokens := new(MockTokenService)
		sink := &capturingSink{}

		store.On("GetByUsername", ctx, "alice").Return(alice, nil).Once()
		tokens.On("Issue", mock.Anything).Return("", auth.ErrInternal.Wrap(errors.New("hsm down"))).Once()

		_, err := newAuther(store, tokens, sink).Login(ctx, "alice", "correct-horse")
		assert.ErrorIs(t, err, auth.ErrInternal)
		assert.Empty(t, sink.types())
	})
}

func TestActivity_SinkFailureDoesNotFailLogin(t *testing.T) {
	ctx := auth.WithCorrelationID(context.Background(), "corr-1")
	hasher := testHasher()
	hash, err := hasher.Hash("pw-123456")
	require.NoError(t, err)

	store := new(MockUsers)
	store.On("GetByUsername", ctx, "bob").Return(&auth.User{ID: 9, Username: "bob", PasswordHash: hash}, nil)

	tokens := new(MockTokenService)
	tokens.On("Issue", mock.Anything).Return("t", nil)

	var seen auth.ActivityEvent
	failing := auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		seen = event
		return errors.New("sink offline")
	})

	logger := new(MockLogger)
	logger.On("Warn", "activity sink failed", mock.Anything).Once()

	validator := auth.NewCredentialValidator(store, hasher).WithLogger(nopLogger{})
	token, err := auth.NewAuthenticator(validator, tokens).
		WithLogger(logger).
		WithActivitySink(failing).
		Login(ctx, "bob", "pw-123456")

	require.NoError(t, err)
	assert.Equal(t, "t", token)
	assert.Equal(t, "corr-1", seen.CorrelationID)
	assert.False(t, seen.OccurredAt.IsZero())
	logger.AssertExpectations(t)
}
