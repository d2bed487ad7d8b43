package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UpdateUserMessage changes account fields. Nil fields are left as stored.
type UpdateUserMessage struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	// Version is the version the caller last read
	Version int `json:"version"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// Normalize lowercases username and email when present
func (e *UpdateUserMessage) Normalize() {
	if e.Username != nil {
		username := NormalizeUsername(*e.Username)
		e.Username = &username
	}
	if e.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*e.Email))
		e.Email = &email
	}
}

func (e UpdateUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.NilOrNotEmpty, validation.Length(3, 20)),
		validation.Field(&e.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&e.Password, validation.NilOrNotEmpty, validation.Length(8, maxPasswordBytes)),
		validation.Field(&e.Version, validation.Required, validation.Min(1)),
	)
}

// columns lists the user columns the message writes
func (e UpdateUserMessage) columns() []string {
	columns := make([]string, 0, 3)
	if e.Username != nil {
		columns = append(columns, "username")
	}
	if e.Email != nil {
		columns = append(columns, "email")
	}
	if e.Password != nil {
		columns = append(columns, "password_hash")
	}
	return columns
}
