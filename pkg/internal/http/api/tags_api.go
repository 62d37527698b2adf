package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func listTags(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)

	active := exts.QueryBoolPtr(c, "active")
	if exts.EnsureAdmin(c) != nil {
		active = lo.ToPtr(true)
	}

	items, count, err := services.ListTags(limit, offset, c.Query("search"), active)
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func getTag(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "tagId")
	if err != nil {
		return err
	}

	tag, err := services.GetTagWithID(id)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

func getTagBySlug(c *fiber.Ctx) error {
	tag, err := services.GetTagWithSlug(c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

func createTag(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data struct {
		Name        string `json:"name" validate:"required,max=128"`
		Description string `json:"description" validate:"max=4096"`
		IsActive    *bool  `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	tag, err := services.NewTag(services.TagInput{
		Name:        data.Name,
		Description: data.Description,
		IsActive:    data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}

func editTag(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "tagId")
	if err != nil {
		return err
	}

	var data struct {
		Name        *string `json:"name" validate:"omitempty,max=128"`
		Description *string `json:"description" validate:"omitempty,max=4096"`
		IsActive    *bool   `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	tag, err := services.EditTag(id, services.TagPatch{
		Name:        data.Name,
		Description: data.Description,
		IsActive:    data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(tag)
}

func deleteTag(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "tagId")
	if err != nil {
		return err
	}

	if err := services.DeleteTag(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
