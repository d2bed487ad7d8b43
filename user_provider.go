package auth

import (
	"context"
	"errors"
)

// UserFinder is the lookup a CredentialValidator needs
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// CredentialValidator checks a username/password pair against stored users
type CredentialValidator struct {
	store  UserFinder
	hasher *BcryptHasher
	logger Logger
}

// NewCredentialValidator will create a new CredentialValidator
func NewCredentialValidator(store UserFinder, hasher *BcryptHasher) *CredentialValidator {
	return &CredentialValidator{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *CredentialValidator) WithLogger(l Logger) *CredentialValidator {
	u.logger = normalizeLogger(l)
	return u
}

// Validate returns the identity for username when password matches. An
// unknown username and a wrong password both return ErrInvalidCredentials,
// and both pay for one bcrypt comparison.
func (u *CredentialValidator) Validate(ctx context.Context, username, password string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := u.store.GetByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInternal.WithMessage("failed to retrieve user during verification").Wrap(err)
		}
		u.hasher.Verify(password, u.hasher.DummyHash())
		LoggerFor(ctx, u.logger).Debug("credential check failed", "reason", "unknown_user")
		return nil, ErrInvalidCredentials
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		LoggerFor(ctx, u.logger).Debug("credential check failed", "reason", "password_mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user.Identity(), nil
}
