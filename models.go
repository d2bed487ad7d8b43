package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the credential record. The password hash never leaves the
// persistence layer; use Identity for anything returned to callers.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Username      string     `bun:"username,notnull,unique" json:"username"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsAdmin       bool       `bun:"is_admin,notnull,default:false" json:"isAdmin"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
	Version       int        `bun:"version,notnull,default:1" json:"version"`
	CreatedByID   *int64     `bun:"created_by_id" json:"createdById,omitempty"`
	UpdatedByID   *int64     `bun:"updated_by_id" json:"updatedById,omitempty"`
}

// Identity returns the sanitized projection of the user
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
		CreatedByID: u.CreatedByID,
		UpdatedByID: u.UpdatedByID,
	}
}

// Identity is the authenticated principal attached to a request
type Identity struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int       `json:"version"`
	CreatedByID *int64    `json:"createdById,omitempty"`
	UpdatedByID *int64    `json:"updatedById,omitempty"`
}

// Identities maps users to their sanitized projection
func Identities(users []*User) []*Identity {
	out := make([]*Identity, 0, len(users))
	for _, u := range users {
		out = append(out, u.Identity())
	}
	return out
}
