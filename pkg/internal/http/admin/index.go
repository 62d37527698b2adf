package admin

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func MapControllers(app *fiber.App, baseURL string) {
	admin := app.Group(baseURL, func(c *fiber.Ctx) error {
		if err := exts.EnsureAdmin(c); err != nil {
			return err
		}
		return c.Next()
	}).Name("Admin API")
	{
		admin.Patch("/comments/:commentId/moderate", moderateComment)
		admin.Delete("/comments/:commentId", deleteComment)

		admin.Post("/maintenance/reconcile", triggerCounterReconcile)
		admin.Post("/maintenance/cleanup", triggerCleanup)
	}
}
