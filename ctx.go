package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// DefaultContextKey is the fiber locals key holding the request Identity
const DefaultContextKey = "user"

// CorrelationLocalsKey is the fiber locals key holding the correlation id
const CorrelationLocalsKey = "correlation_id"

var identityCtxKey = &contextKey{"identity"}
var correlationCtxKey = &contextKey{"correlation_id"}

type contextKey struct {
	name string
}

// WithIdentity sets the Identity in the given context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the Identity in the context
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(identityCtxKey).(*Identity)
	return raw, ok && raw != nil
}

// WithCorrelationID stores the request correlation id
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationCtxKey, id)
}

// CorrelationID returns the correlation id stored in ctx, if any
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationCtxKey).(string)
	return id
}

// GetIdentity extracts the Identity from the fiber locals. An empty key
// uses DefaultContextKey.
func GetIdentity(c *fiber.Ctx, key ...string) (*Identity, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	identity, ok := c.Locals(k).(*Identity)
	return identity, ok && identity != nil
}

// MustIdentity returns the request Identity or ErrMissingToken
func MustIdentity(c *fiber.Ctx, key ...string) (*Identity, error) {
	identity, ok := GetIdentity(c, key...)
	if !ok {
		return nil, ErrMissingToken
	}
	return identity, nil
}

// RequestCorrelationID returns the correlation id assigned to the request
func RequestCorrelationID(c *fiber.Ctx) string {
	if id, ok := c.Locals(CorrelationLocalsKey).(string); ok {
		return id
	}
	return CorrelationID(c.UserContext())
}
