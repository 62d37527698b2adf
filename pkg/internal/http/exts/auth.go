package exts

import (
	"strings"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// ContextMiddleware attaches the local user when the bearer token is ours.
// Requests with foreign or broken tokens carry on anonymously.
func ContextMiddleware(deps *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if len(token) == 0 || deps == nil || deps.Tokens == nil {
			return c.Next()
		}

		user, err := services.AuthenticateToken(deps.Tokens, token)
		if err != nil {
			log.Trace().Err(err).Msg("Bearer token is not a local session, continue anonymously.")
			return c.Next()
		}

		c.Locals("user", user)
		return c.Next()
	}
}

func GetUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if _, ok := GetUser(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized)
	}
	return nil
}

func EnsureAdmin(c *fiber.Ctx) error {
	user, ok := GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized)
	} else if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "administrator privileges required")
	}
	return nil
}

func RequestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
