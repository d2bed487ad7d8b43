package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued by TokenService. Subject holds the
// user id. Username is informational and never used for lookups.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// SubjectID parses the subject as a user id
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.RegisteredClaims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidOrExpiredToken.Wrap(err)
	}
	return id, nil
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
