package admin

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func triggerCounterReconcile(c *fiber.Ctx) error {
	report, err := services.ReconcileCounters()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"fixed": report,
		"total": report.Total(),
	})
}

func triggerCleanup(c *fiber.Ctx) error {
	go services.DoAutoDatabaseCleanup()
	go services.DoAutoUploadCleanup()

	return c.SendStatus(fiber.StatusAccepted)
}
