package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func listCategories(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)

	isAdmin := exts.EnsureAdmin(c) == nil
	activeOnly := !isAdmin || c.QueryBool("activeOnly", false)

	items, count, err := services.ListCategories(limit, offset, c.Query("search"), activeOnly)
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func getCategoryTree(c *fiber.Ctx) error {
	tree, err := services.GetCategoryTree()
	if err != nil {
		return err
	}
	return c.JSON(tree)
}

func getCategory(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "categoryId")
	if err != nil {
		return err
	}

	category, err := services.GetCategoryWithID(id)
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func getCategoryBySlug(c *fiber.Ctx) error {
	category, err := services.GetCategoryWithSlug(c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func createCategory(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data struct {
		Name        string      `json:"name" validate:"required,max=128"`
		Description string      `json:"description" validate:"max=4096"`
		Image       *string     `json:"image"`
		Parent      *models.Ref `json:"parent"`
		Order       int         `json:"order"`
		IsActive    *bool       `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	category, err := services.NewCategory(services.CategoryInput{
		Name:        data.Name,
		Description: data.Description,
		Image:       data.Image,
		ParentID:    refPtr(data.Parent),
		Order:       data.Order,
		IsActive:    data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func editCategory(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "categoryId")
	if err != nil {
		return err
	}

	var data struct {
		Name        *string     `json:"name" validate:"omitempty,max=128"`
		Description *string     `json:"description" validate:"omitempty,max=4096"`
		Image       *string     `json:"image"`
		Parent      *models.Ref `json:"parent"`
		RootLevel   bool        `json:"root_level"`
		Order       *int        `json:"order"`
		IsActive    *bool       `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	parent := refPtr(data.Parent)
	if data.RootLevel {
		parent = lo.ToPtr(uint(0))
	}

	category, err := services.EditCategory(id, services.CategoryPatch{
		Name:        data.Name,
		Description: data.Description,
		Image:       data.Image,
		ParentID:    parent,
		Order:       data.Order,
		IsActive:    data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(category)
}

func deleteCategory(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "categoryId")
	if err != nil {
		return err
	}

	if err := services.DeleteCategory(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func refPtr(ref *models.Ref) *uint {
	if ref == nil {
		return nil
	}
	return lo.ToPtr(ref.Uint())
}
