package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *handlers) login(c *fiber.Ctx) error {
	if h.deps.Tokens == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "authentication is not configured")
	}

	var data struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, tokens, err := services.Login(h.deps.Tokens, data.Email, data.Password, exts.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *handlers) refreshSession(c *fiber.Ctx) error {
	if h.deps.Tokens == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "authentication is not configured")
	}

	var data struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	tokens, err := services.RefreshSession(h.deps.Tokens, data.RefreshToken, exts.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(tokens)
}

func logout(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	var data struct {
		RefreshToken string `json:"refresh_token"`
	}
	if len(c.Body()) > 0 {
		if err := exts.BindAndValidate(c, &data); err != nil {
			return err
		}
	}

	if err := services.Logout(user.ID, data.RefreshToken, exts.RequestMeta(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func getMe(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	return c.JSON(user)
}

func changePassword(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	var data struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.ChangePassword(user.ID, data.CurrentPassword, data.NewPassword, exts.RequestMeta(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
