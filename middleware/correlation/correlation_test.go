package correlation_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/goliatone/go-todo-auth/middleware/correlation"
)

type entry struct {
	msg  string
	args []any
}

type recordingLogger struct {
	entries []entry
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.entries = append(r.entries, entry{msg, args}) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.entries = append(r.entries, entry{msg, args}) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.entries = append(r.entries, entry{msg, args}) }
func (r *recordingLogger) Error(msg string, args ...any) { r.entries = append(r.entries, entry{msg, args}) }

func newApp(log auth.Logger, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(log)})
	app.Use(correlation.New(correlation.Config{
		Logger:    log,
		Generator: func() string { return "generated-id" },
	}))
	app.Get("/", handler)
	return app
}

func TestCorrelation_GeneratesID(t *testing.T) {
	var seen string
	app := newApp(&recordingLogger{}, func(c *fiber.Ctx) error {
		seen = auth.CorrelationID(c.UserContext())
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "generated-id", resp.Header.Get(correlation.HeaderName))
	assert.Equal(t, "generated-id", seen)
}

func TestCorrelation_ReusesHeader(t *testing.T) {
	var local string
	app := newApp(&recordingLogger{}, func(c *fiber.Ctx) error {
		local = auth.RequestCorrelationID(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.HeaderName, "client-id")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "client-id", resp.Header.Get(correlation.HeaderName))
	assert.Equal(t, "client-id", local)
}

func TestCorrelation_ReplacesMalformedHeader(t *testing.T) {
	cases := map[string]string{
		"too long":   strings.Repeat("a", correlation.MaxIDLength+1),
		"whitespace": "client id",
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			app := newApp(&recordingLogger{}, func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(correlation.HeaderName, value)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, "generated-id", resp.Header.Get(correlation.HeaderName))
		})
	}
}

func TestCorrelation_LogsRenderedStatus(t *testing.T) {
	log := &recordingLogger{}
	app := newApp(log, func(c *fiber.Ctx) error {
		return auth.ErrNotOwner
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var sent *entry
	for i := range log.entries {
		if log.entries[i].msg == "response sent" {
			sent = &log.entries[i]
		}
	}
	require.NotNil(t, sent)
	assert.Contains(t, sent.args, http.StatusForbidden)
}
