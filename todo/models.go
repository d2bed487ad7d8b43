package todo

import (
	"time"

	"github.com/uptrace/bun"
)

// Todo is a task owned by the user that created it
type Todo struct {
	bun.BaseModel `bun:"table:todo,alias:td"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   *string   `bun:"description" json:"description"`
	IsClosed      bool      `bun:"is_closed,notnull,default:false" json:"isClosed"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
	Version       int       `bun:"version,notnull,default:1" json:"version"`
	CreatedByID   int64     `bun:"created_by_id,notnull" json:"createdById"`
	UpdatedByID   *int64    `bun:"updated_by_id" json:"updatedById,omitempty"`
}
