package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-todo-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContext(t *testing.T) {
	_, ok := auth.IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{ID: 4})
	identity, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(4), identity.ID)

	ctx = auth.WithIdentity(context.Background(), nil)
	_, ok = auth.IdentityFromContext(ctx)
	assert.False(t, ok)
}

func TestCorrelationContext(t *testing.T) {
	assert.Empty(t, auth.CorrelationID(context.Background()))
	assert.Equal(t, "abc", auth.CorrelationID(auth.WithCorrelationID(context.Background(), "abc")))
}

func TestFiberIdentityHelpers(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(nopLogger{})})
	app.Get("/default", func(c *fiber.Ctx) error {
		c.Locals(auth.DefaultContextKey, &auth.Identity{ID: 1, Username: "admin"})
		identity, err := auth.MustIdentity(c)
		if err != nil {
			return err
		}
		return c.SendString(identity.Username)
	})
	app.Get("/custom", func(c *fiber.Ctx) error {
		c.Locals("principal", &auth.Identity{ID: 2, Username: "user"})
		identity, err := auth.MustIdentity(c, "principal")
		if err != nil {
			return err
		}
		return c.SendString(identity.Username)
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		_, err := auth.MustIdentity(c)
		return err
	})

	for path, status := range map[string]int{
		"/default": http.StatusOK,
		"/custom":  http.StatusOK,
		"/none":    http.StatusUnauthorized,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}
