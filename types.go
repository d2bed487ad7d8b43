package auth

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the logging contract used across the module. Args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextLogger is implemented by loggers that can attach request scoped
// fields (correlation id) found in a context.
type ContextLogger interface {
	Logger
	WithContext(ctx context.Context) Logger
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetIssuer() string
	GetPasswordCost() int
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenService issues and verifies access tokens
type TokenService interface {
	Issue(identity *Identity) (string, error)
	Verify(token string) (*Claims, error)
}

// UserStore is the persistence contract the authentication core relies on
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
}

// LoggerFor returns a request scoped logger when l supports it. A nil l
// falls back to the stdout logger.
func LoggerFor(ctx context.Context, l Logger) Logger {
	l = normalizeLogger(l)
	if cl, ok := l.(ContextLogger); ok && ctx != nil {
		return cl.WithContext(ctx)
	}
	return l
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + line(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + line(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + line(msg, args))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + line(msg, args))
}

func line(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
