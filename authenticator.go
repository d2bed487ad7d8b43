package auth

import (
	"context"
	"errors"
)

// Auther signs users in
type Auther struct {
	validator *CredentialValidator
	tokens    TokenService
	logger    Logger
	activity  ActivitySink
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(validator *CredentialValidator, tokens TokenService) *Auther {
	return &Auther{
		validator: validator,
		tokens:    tokens,
		logger:    defLogger{},
		activity:  noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

// Login validates the credentials and returns a signed token
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.validator.Validate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			recordActivity(ctx, s.activity, s.logger, ActivityEvent{
				EventType: ActivityEventLoginFailure,
				Metadata:  map[string]any{"username": NormalizeUsername(username)},
			})
		}
		return "", err
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		LoggerFor(ctx, s.logger).Error("failed to issue token", "user_id", identity.ID, "error", err)
		return "", err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		ActorID:   identity.ID,
		UserID:    identity.ID,
	})

	return token, nil
}
