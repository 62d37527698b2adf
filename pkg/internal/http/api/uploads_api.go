package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *handlers) createUpload(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field file is required")
	}
	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	defer file.Close()

	result, err := services.StoreUpload(c.Context(), h.deps.Files, c.Params("profile"), user.ID, file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *handlers) deleteUpload(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	id := c.Params("*")
	if len(id) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "upload id is required")
	}

	if err := services.DeleteUpload(c.Context(), h.deps.Files, id, user); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
