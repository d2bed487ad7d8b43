package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-todo-auth/middleware/jwtware"
)

// GuardState is the stage a request is in while the guard authenticates it
type GuardState string

const (
	StateUnauthenticated GuardState = "unauthenticated"
	StateExtracting      GuardState = "extracting"
	StateVerifying       GuardState = "verifying"
	StateResolving       GuardState = "resolving"
	StateAuthenticated   GuardState = "authenticated"
	StateRejected        GuardState = "rejected"
)

// IdentityResolver loads the current user for a token subject
type IdentityResolver interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

// Guard authenticates requests carrying a bearer token. It never writes
// and keeps no state between requests.
type Guard struct {
	tokens     TokenService
	users      IdentityResolver
	logger     Logger
	activity   ActivitySink
	authScheme string
	contextKey string
}

// NewGuard returns a guard verifying tokens with tokens and resolving
// subjects through users
func NewGuard(tokens TokenService, users IdentityResolver) *Guard {
	return &Guard{
		tokens:     tokens,
		users:      users,
		logger:     defLogger{},
		activity:   noopActivitySink{},
		authScheme: "Bearer",
		contextKey: DefaultContextKey,
	}
}

func (g *Guard) WithLogger(l Logger) *Guard {
	g.logger = normalizeLogger(l)
	return g
}

// WithActivitySink records rejected requests as ActivityEventAccessDenied
func (g *Guard) WithActivitySink(sink ActivitySink) *Guard {
	g.activity = normalizeActivitySink(sink)
	return g
}

// WithConfig picks up the auth scheme and locals key from cfg
func (g *Guard) WithConfig(cfg Config) *Guard {
	if s := strings.TrimSpace(cfg.GetAuthScheme()); s != "" {
		g.authScheme = s
	}
	if k := cfg.GetContextKey(); k != "" {
		g.contextKey = k
	}
	return g
}

// ContextKey is the fiber locals key the identity is stored under
func (g *Guard) ContextKey() string {
	return g.contextKey
}

type guardRun struct {
	state GuardState
}

func (r *guardRun) to(state GuardState) {
	r.state = state
}

// Authenticate runs the full guard flow for an Authorization header value
func (g *Guard) Authenticate(ctx context.Context, authorization string) (*Identity, error) {
	run := &guardRun{state: StateUnauthenticated}

	run.to(StateExtracting)
	token, err := jwtware.FromHeaderValue(authorization, g.authScheme)
	if err != nil {
		return nil, g.reject(ctx, run, ErrMissingToken)
	}

	return g.resolve(ctx, run, token)
}

// Validate implements jwtware.TokenValidator. The token was already extracted.
func (g *Guard) Validate(ctx context.Context, token string) (any, error) {
	run := &guardRun{state: StateExtracting}
	identity, err := g.resolve(ctx, run, token)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (g *Guard) resolve(ctx context.Context, run *guardRun, token string) (*Identity, error) {
	run.to(StateVerifying)
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, g.reject(ctx, run, ErrInvalidOrExpiredToken.Wrap(err))
	}

	subject, err := claims.SubjectID()
	if err != nil {
		return nil, g.reject(ctx, run, ErrInvalidOrExpiredToken.Wrap(err))
	}

	run.to(StateResolving)
	if err := ctx.Err(); err != nil {
		return nil, g.reject(ctx, run, err)
	}

	user, err := g.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, g.reject(ctx, run, ErrUserNotFound.Wrap(err))
		}
		return nil, g.reject(ctx, run, err)
	}

	run.to(StateAuthenticated)
	return user.Identity(), nil
}

func (g *Guard) reject(ctx context.Context, run *guardRun, err error) error {
	from := run.state
	run.to(StateRejected)

	LoggerFor(ctx, g.logger).Info("request rejected by guard",
		"state", string(from),
		"error", err,
	)

	reason := string(AsError(err).Kind)
	recordActivity(ctx, g.activity, g.logger, ActivityEvent{
		EventType: ActivityEventAccessDenied,
		Metadata:  map[string]any{"reason": reason, "state": string(from)},
	})

	return err
}

// GuardOption configures Guard.Middleware
type GuardOption func(*jwtware.Config)

// WithPublic marks requests matching fn as public. Public requests skip
// every check and carry no identity.
func WithPublic(fn func(c *fiber.Ctx) bool) GuardOption {
	return func(cfg *jwtware.Config) {
		prev := cfg.Filter
		cfg.Filter = func(c *fiber.Ctx) bool {
			if prev != nil && prev(c) {
				return true
			}
			return fn(c)
		}
	}
}

// WithPublicPaths marks the given request paths public, for any method
func WithPublicPaths(paths ...string) GuardOption {
	public := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		public[strings.TrimSuffix(p, "/")] = struct{}{}
	}
	return WithPublic(func(c *fiber.Ctx) bool {
		_, ok := public[strings.TrimSuffix(c.Path(), "/")]
		return ok
	})
}

// WithErrorHandler replaces the handler used for rejected requests
func WithErrorHandler(h fiber.ErrorHandler) GuardOption {
	return func(cfg *jwtware.Config) {
		cfg.ErrorHandler = h
	}
}

// WithValidationListeners adds listeners run after a successful resolve
func WithValidationListeners(listeners ...jwtware.ValidationListener) GuardOption {
	return func(cfg *jwtware.Config) {
		cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
	}
}

// Middleware returns the fiber handler protecting routes. Rejections are
// returned as errors so the app ErrorHandler renders them.
func (g *Guard) Middleware(opts ...GuardOption) fiber.Handler {
	cfg := jwtware.Config{
		ContextKey:     g.contextKey,
		AuthScheme:     g.authScheme,
		TokenValidator: g,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return g.reject(c.UserContext(), &guardRun{state: StateExtracting}, ErrMissingToken)
			}
			return err
		},
		ContextEnricher: func(ctx context.Context, principal any) context.Context {
			if identity, ok := principal.(*Identity); ok {
				return WithIdentity(ctx, identity)
			}
			return ctx
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return jwtware.New(cfg)
}
