package api

import (
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listBanners(c *fiber.Ctx) error {
	if c.QueryBool("active", false) || exts.EnsureAdmin(c) != nil {
		items, err := services.ListActiveBanners(c.Query("position"))
		if err != nil {
			return err
		}
		return c.JSON(items)
	}

	page, limit, offset := exts.GetPagination(c)
	items, count, err := services.ListBanners(limit, offset, c.Query("position"))
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func getBanner(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "bannerId")
	if err != nil {
		return err
	}

	item, err := services.GetBannerWithID(id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func createBanner(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data struct {
		Title    string     `json:"title" validate:"required,max=256"`
		ImageURL string     `json:"image_url" validate:"required,max=2048"`
		LinkURL  *string    `json:"link_url" validate:"omitempty,max=2048"`
		Position string     `json:"position" validate:"max=64"`
		Order    int        `json:"order"`
		IsActive *bool      `json:"is_active"`
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewBanner(services.BannerInput{
		Title:    data.Title,
		ImageURL: data.ImageURL,
		LinkURL:  data.LinkURL,
		Position: data.Position,
		Order:    data.Order,
		IsActive: data.IsActive,
		StartsAt: data.StartsAt,
		EndsAt:   data.EndsAt,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func editBanner(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "bannerId")
	if err != nil {
		return err
	}

	var data struct {
		Title    *string    `json:"title" validate:"omitempty,max=256"`
		ImageURL *string    `json:"image_url" validate:"omitempty,max=2048"`
		LinkURL  *string    `json:"link_url" validate:"omitempty,max=2048"`
		Position *string    `json:"position" validate:"omitempty,max=64"`
		Order    *int       `json:"order"`
		IsActive *bool      `json:"is_active"`
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.EditBanner(id, services.BannerPatch{
		Title:    data.Title,
		ImageURL: data.ImageURL,
		LinkURL:  data.LinkURL,
		Position: data.Position,
		Order:    data.Order,
		IsActive: data.IsActive,
		StartsAt: data.StartsAt,
		EndsAt:   data.EndsAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteBanner(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "bannerId")
	if err != nil {
		return err
	}

	if err := services.DeleteBanner(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
