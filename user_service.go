package auth

import (
	"context"

	"github.com/uptrace/bun"
)

// UserService holds the user administration operations. Every method
// authorizes actor before touching the store.
type UserService struct {
	repo     RepositoryManager
	register *RegisterUserHandler
	logger   Logger
	activity ActivitySink
}

func NewUserService(repo RepositoryManager, register *RegisterUserHandler) *UserService {
	return &UserService{
		repo:     repo,
		register: register,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (s *UserService) WithLogger(l Logger) *UserService {
	s.logger = normalizeLogger(l)
	return s
}

func (s *UserService) WithActivitySink(sink ActivitySink) *UserService {
	s.activity = normalizeActivitySink(sink)
	return s
}

// Register is the public sign up. The admin flag can not be self granted.
func (s *UserService) Register(ctx context.Context, msg RegisterUserMessage) (*Identity, error) {
	msg.IsAdmin = false
	msg.ActorID = nil
	return s.register.Execute(ctx, msg)
}

// Create registers a user on behalf of an admin
func (s *UserService) Create(ctx context.Context, actor *Identity, msg RegisterUserMessage) (*Identity, error) {
	if err := Authorize(actor, RequireAdmin()); err != nil {
		return nil, err
	}
	msg.ActorID = &actor.ID
	return s.register.Execute(ctx, msg)
}

// List returns every active user
func (s *UserService) List(ctx context.Context, actor *Identity) ([]*Identity, error) {
	if err := Authorize(actor, RequireAdmin()); err != nil {
		return nil, err
	}

	records, err := s.repo.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	return Identities(records), nil
}

// Get returns user id to its owner or an admin
func (s *UserService) Get(ctx context.Context, actor *Identity, id int64) (*Identity, error) {
	if err := Authorize(actor, RequireOwner(id)); err != nil {
		return nil, err
	}

	record, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Identity(), nil
}

// Update changes username, email or password of user id. Owners may
// update their own account, admins any account.
func (s *UserService) Update(ctx context.Context, actor *Identity, id int64, msg UpdateUserMessage) (*Identity, error) {
	if err := Authorize(actor, RequireOwner(id)); err != nil {
		return nil, err
	}

	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	var digest string
	if msg.Password != nil {
		var err error
		if digest, err = s.register.hasher.Hash(*msg.Password); err != nil {
			return nil, ErrInternal.WithMessage("failed to hash password").Wrap(err)
		}
	}

	var updated *User
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Users().GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if msg.Username != nil {
			record.Username = *msg.Username
		}
		if msg.Email != nil {
			record.Email = *msg.Email
		}
		if msg.Password != nil {
			record.PasswordHash = digest
		}
		record.Version = msg.Version
		record.UpdatedByID = &actor.ID

		updated, err = s.repo.Users().UpdateTx(ctx, tx, record, msg.columns()...)
		return err
	})
	if err != nil {
		return nil, err
	}

	LoggerFor(ctx, s.logger).Info("user updated", "user_id", updated.ID, "actor_id", actor.ID, "version", updated.Version)
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventUserUpdated,
		ActorID:   actor.ID,
		UserID:    updated.ID,
		Metadata:  map[string]any{"fields": msg.columns()},
	})

	return updated.Identity(), nil
}

// SetAdmin grants or revokes the admin flag
func (s *UserService) SetAdmin(ctx context.Context, actor *Identity, id int64, isAdmin bool) (*Identity, error) {
	if err := Authorize(actor, RequireAdmin()); err != nil {
		return nil, err
	}

	var updated *User
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Users().GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		record.IsAdmin = isAdmin
		record.UpdatedByID = &actor.ID

		updated, err = s.repo.Users().UpdateTx(ctx, tx, record, "is_admin")
		return err
	})
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventAdminChanged,
		ActorID:   actor.ID,
		UserID:    updated.ID,
		Metadata:  map[string]any{"is_admin": updated.IsAdmin},
	})

	return updated.Identity(), nil
}

// Delete soft deletes user id. Tokens issued to it stop resolving.
func (s *UserService) Delete(ctx context.Context, actor *Identity, id int64) (*Identity, error) {
	if err := Authorize(actor, RequireAdmin()); err != nil {
		return nil, err
	}

	record, err := s.repo.Users().SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}

	LoggerFor(ctx, s.logger).Info("user deleted", "user_id", record.ID, "actor_id", actor.ID)
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventUserDeleted,
		ActorID:   actor.ID,
		UserID:    record.ID,
	})

	return record.Identity(), nil
}
