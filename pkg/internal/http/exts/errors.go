package exts

import (
	"errors"

	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:   fiber.StatusBadRequest,
	services.KindNotFound:     fiber.StatusNotFound,
	services.KindConflict:     fiber.StatusConflict,
	services.KindForbidden:    fiber.StatusForbidden,
	services.KindUnauthorized: fiber.StatusUnauthorized,
	services.KindUpstream:     fiber.StatusBadGateway,
}

// ErrorHandler renders every failure as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var domain *services.Error
	if errors.As(err, &domain) {
		status, ok := kindStatus[domain.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		if domain.Cause != nil {
			log.Debug().Err(domain.Cause).Str("kind", string(domain.Kind)).Msg("Request failed with a domain error.")
		}
		return c.Status(status).JSON(fiber.Map{
			"error": domain.Message,
			"code":  domain.Kind,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  statusCode(fe.Code),
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("An unexpected error occurred when handling request...")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "an unexpected error occurred",
		"code":  statusCode(fiber.StatusInternalServerError),
	})
}

func statusCode(status int) string {
	for kind, mapped := range kindStatus {
		if mapped == status {
			return string(kind)
		}
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "HTTP_ERROR"
}
