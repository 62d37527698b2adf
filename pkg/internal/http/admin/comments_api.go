package admin

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func moderateComment(c *fiber.Ctx) error {
	user, _ := exts.GetUser(c)
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	var data struct {
		Status string `json:"status" validate:"required,oneof=pending approved rejected spam"`
		Reason string `json:"reason" validate:"max=1024"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.ModerateComment(id, data.Status, data.Reason, user.ID)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteComment(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	removed, err := services.AdminDeleteComment(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"removed": removed})
}
