package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error         string            `json:"error"`
	TextCode      string            `json:"text_code"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// NewErrorHandler returns the fiber ErrorHandler mapping module errors to
// status codes. Internal causes are logged, never sent to the client.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		log := LoggerFor(c.UserContext(), logger)
		correlationID := RequestCorrelationID(c)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{
				Error:         fe.Message,
				TextCode:      textCodeForStatus(fe.Code),
				CorrelationID: correlationID,
			})
		}

		e := AsError(err)
		msg := e.Message

		switch {
		case e.Kind == KindInternal:
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
			msg = ErrInternal.Message
		case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
			log.Info("request denied",
				"path", c.Path(),
				"text_code", e.TextCode,
			)
		default:
			log.Debug("request error",
				"path", c.Path(),
				"text_code", e.TextCode,
				"fields", print.MaybePrettyJSON(e.Fields),
			)
		}

		return c.Status(e.Status).JSON(ErrorResponse{
			Error:         msg,
			TextCode:      e.TextCode,
			CorrelationID: correlationID,
			Fields:        e.Fields,
		})
	}
}

func textCodeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
