package todo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/goliatone/go-todo-auth/persistence"
)

// Repository persists todos
type Repository interface {
	Create(ctx context.Context, record *Todo) (*Todo, error)
	GetByID(ctx context.Context, id int64) (*Todo, error)
	// List returns all todos, or only those created by ownerID when set
	List(ctx context.Context, ownerID *int64) ([]*Todo, error)
	Update(ctx context.Context, record *Todo, columns ...string) (*Todo, error)
	Delete(ctx context.Context, id int64) (*Todo, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db  bun.IDB
	now func() time.Time
}

// NewRepository returns a bun backed Repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) Create(ctx context.Context, record *Todo) (*Todo, error) {
	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt
	if record.Version == 0 {
		record.Version = 1
	}

	if _, err := r.db.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Todo, error) {
	record := &Todo{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if persistence.IsNoRows(err) {
			return nil, auth.ErrRecordNotFound.WithMessage("todo not found").Wrap(err)
		}
		return nil, err
	}
	return record, nil
}

func (r *repository) List(ctx context.Context, ownerID *int64) ([]*Todo, error) {
	records := make([]*Todo, 0)
	q := r.db.NewSelect().Model(&records).Order("id ASC")
	if ownerID != nil {
		q = q.Where("?TableAlias.created_by_id = ?", *ownerID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// Update writes columns when record.Version matches the stored version
func (r *repository) Update(ctx context.Context, record *Todo, columns ...string) (*Todo, error) {
	expected := record.Version
	record.Version = expected + 1
	record.UpdatedAt = r.now()
	columns = append(columns, "version", "updated_at", "updated_by_id")

	res, err := r.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Where("?TableAlias.version = ?", expected).
		Exec(ctx)
	if err != nil {
		record.Version = expected
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		record.Version = expected
		if _, err := r.GetByID(ctx, record.ID); err != nil {
			return nil, err
		}
		return nil, auth.ErrVersionConflict
	}

	return r.GetByID(ctx, record.ID)
}

func (r *repository) Delete(ctx context.Context, id int64) (*Todo, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.NewDelete().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Todo)(nil)).Count(ctx)
}
