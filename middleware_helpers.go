package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// bindBody decodes the JSON body into out
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return ErrValidationFailed.
			WithFields(map[string]string{"body": "malformed request body"}).
			Wrap(err)
	}
	return nil
}

// ParamID reads a positive integer route parameter
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrValidationFailed.WithFields(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// BindBody is bindBody for handlers outside this package
func BindBody(c *fiber.Ctx, out any) error {
	return bindBody(c, out)
}
