// Package correlation assigns every request a correlation id and logs the
// request and its response under it.
package correlation

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	auth "github.com/goliatone/go-todo-auth"
)

// HeaderName is read from the request and echoed on the response
const HeaderName = "X-Correlation-Id"

// MaxIDLength caps the size of an incoming correlation id
const MaxIDLength = 128

type Config struct {
	Header    string
	Generator func() string
	Logger    auth.Logger
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Header == "" {
		cfg.Header = HeaderName
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}
	return cfg
}

// New returns the correlation middleware. A well formed incoming header
// value is reused, otherwise a new id is generated.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		id := c.Get(cfg.Header)
		if !wellFormed(id) {
			id = cfg.Generator()
		}

		c.Locals(auth.CorrelationLocalsKey, id)
		c.SetUserContext(auth.WithCorrelationID(c.UserContext(), id))
		c.Set(cfg.Header, id)

		log := auth.LoggerFor(c.UserContext(), cfg.Logger)
		log.Debug("request received", "method", c.Method(), "path", c.Path())

		start := time.Now()
		err := c.Next()
		if err != nil {
			// render now so the logged status is the one sent
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Info("response sent",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)
		return nil
	}
}

// wellFormed accepts short printable ASCII ids without spaces
func wellFormed(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
