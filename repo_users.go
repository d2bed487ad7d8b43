package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-todo-auth/persistence"
	"github.com/uptrace/bun"
)

// Users is the bun backed users repository
type Users interface {
	UserStore

	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByUsernameTx(ctx context.Context, tx bun.IDB, username string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User, columns ...string) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *User, columns ...string) (*User, error)
	SoftDelete(ctx context.Context, id int64) (*User, error)
	SoftDeleteTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	Count(ctx context.Context) (int, error)
}

type users struct {
	db  *bun.DB
	now func() time.Time
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a Users repository on db
func NewUsersRepository(db *bun.DB) Users {
	return &users{
		db:  db,
		now: time.Now,
	}
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return record, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", NormalizeUsername(username)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return record, nil
}

func (a *users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.ExistsByUsernameTx(ctx, a.db, username)
}

// ExistsByUsernameTx includes soft deleted users, their usernames stay reserved
func (a *users) ExistsByUsernameTx(ctx context.Context, tx bun.IDB, username string) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		WhereAllWithDeleted().
		Where("?TableAlias.username = ?", NormalizeUsername(username)).
		Exists(ctx)
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	records := make([]*User, 0)
	if err := a.db.NewSelect().Model(&records).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record, a.now())

	if _, err := tx.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, mapUserErr(err)
	}

	return record, nil
}

func (a *users) Update(ctx context.Context, record *User, columns ...string) (*User, error) {
	return a.UpdateTx(ctx, a.db, record, columns...)
}

// UpdateTx writes columns of record if its Version still matches the
// stored one. The stored version is incremented.
func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, record *User, columns ...string) (*User, error) {
	expected := record.Version
	record.Version = expected + 1
	record.UpdatedAt = a.now()
	columns = append(columns, "version", "updated_at", "updated_by_id")

	res, err := tx.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Where("?TableAlias.version = ?", expected).
		Exec(ctx)
	if err != nil {
		record.Version = expected
		return nil, mapUserErr(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		record.Version = expected
		if _, err := a.GetByIDTx(ctx, tx, record.ID); err != nil {
			return nil, err
		}
		return nil, ErrVersionConflict
	}

	return a.GetByIDTx(ctx, tx, record.ID)
}

func (a *users) SoftDelete(ctx context.Context, id int64) (*User, error) {
	return a.SoftDeleteTx(ctx, a.db, id)
}

// SoftDeleteTx marks the user deleted and returns it as it was before removal
func (a *users) SoftDeleteTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record, err := a.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.NewDelete().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

// NormalizeUsername is the canonical form usernames are stored and looked up in
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func prepareUserDefaults(record *User, now time.Time) {
	if record == nil {
		return
	}

	record.Username = NormalizeUsername(record.Username)
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))

	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if record.Version == 0 {
		record.Version = 1
	}
}

func mapUserErr(err error) error {
	switch {
	case persistence.IsNoRows(err):
		return ErrRecordNotFound.WithMessage("user not found").Wrap(err)
	case persistence.IsUniqueViolation(err):
		if strings.Contains(err.Error(), "email") {
			return ErrDuplicateEmail.Wrap(err)
		}
		return ErrDuplicateUsername.Wrap(err)
	default:
		return err
	}
}
