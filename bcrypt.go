package auth

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordBytes = 72

// BcryptHasher is the only password hashing algorithm used by the module
type BcryptHasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     string
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher using cost, or the build default when
// cost is outside the range bcrypt accepts.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultHashCost()
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor new digests are created with
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash will generate a password hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", ErrInternal.WithMessage("failed to hash password").Wrap(err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed digests
// simply do not match.
func (h *BcryptHasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// DummyHash is a valid digest of a random secret. Comparing against it
// costs the same as comparing against a real user's digest.
func (h *BcryptHasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		digest, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), h.cost)
		if err == nil {
			h.dummy = string(digest)
		}
	})
	return h.dummy
}
