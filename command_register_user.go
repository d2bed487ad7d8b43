package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/uptrace/bun"
)

// RegisterTimeout bounds a single registration, hashing included
var RegisterTimeout = 10 * time.Second

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
	// ActorID is the user performing the registration, nil for self sign up
	ActorID *int64 `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Normalize lowercases username and email
func (e *RegisterUserMessage) Normalize() {
	e.Username = NormalizeUsername(e.Username)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
}

func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required, validation.Length(3, 20)),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, maxPasswordBytes)),
	)
}

// RegisterUserHandler creates users
type RegisterUserHandler struct {
	repo     RepositoryManager
	hasher   PasswordHasher
	logger   Logger
	activity ActivitySink
}

func NewRegisterUserHandler(repo RepositoryManager, hasher PasswordHasher) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		hasher:   hasher,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.logger = normalizeLogger(l)
	return h
}

func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*Identity, error) {
	select {
	case <-ctx.Done():
		return nil, ErrInternal.WithMessage("context cancelled during user registration").Wrap(ctx.Err())
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*Identity, error) {
	event.Normalize()
	if err := event.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, RegisterTimeout)
	defer cancel()

	hash, err := h.hasher.Hash(event.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     event.Username,
		Email:        event.Email,
		PasswordHash: hash,
		IsAdmin:      event.IsAdmin,
		CreatedByID:  event.ActorID,
		UpdatedByID:  event.ActorID,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := h.repo.Users().ExistsByUsernameTx(ctx, tx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateUsername
		}

		user, err = h.repo.Users().CreateTx(ctx, tx, user)
		return err
	})

	if err != nil {
		if e := AsError(err); e.Kind != KindInternal {
			return nil, e
		}
		return nil, ErrInternal.WithMessage("user registration transaction failed").Wrap(err)
	}

	LoggerFor(ctx, h.logger).Info("user registered", "user_id", user.ID, "username", user.Username)

	eventType := ActivityEventRegister
	var actor int64
	if event.ActorID != nil {
		eventType = ActivityEventUserCreated
		actor = *event.ActorID
	}
	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: eventType,
		ActorID:   actor,
		UserID:    user.ID,
		Metadata:  map[string]any{"is_admin": user.IsAdmin},
	})

	return user.Identity(), nil
}
