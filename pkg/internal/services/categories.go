package services

import (
	"strings"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string
	Description string
	Image       *string
	ParentID    *uint
	Order       int
	IsActive    *bool
}

// CategoryPatch leaves nil fields untouched. A ParentID pointing at 0 detaches the category.
type CategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
	ParentID    *uint
	Order       *int
	IsActive    *bool
}

func ListCategories(take int, offset int, probe string, activeOnly bool) ([]models.Category, int64, error) {
	tx := database.C.Model(&models.Category{})
	if len(probe) > 0 {
		probe = "%" + strings.ToLower(probe) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR slug LIKE ?", probe, probe)
	}
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	err := tx.Order("sort_order ASC").Order("created_at DESC").
		Offset(offset).Limit(take).
		Find(&categories).Error

	return categories, count, err
}

func GetCategoryWithID(id uint) (models.Category, error) {
	var category models.Category
	if err := database.C.Where("id = ?", id).First(&category).Error; err != nil {
		return category, wrapQueryError(err, "category")
	}
	return category, nil
}

func GetCategoryWithSlug(slug string) (models.Category, error) {
	var category models.Category
	if err := database.C.Where("slug = ?", SanitizeSlug(slug)).First(&category).Error; err != nil {
		return category, wrapQueryError(err, "category")
	}
	return category, nil
}

// GetCategoryTree returns the active root categories with their descendants attached.
func GetCategoryTree() ([]*models.Category, error) {
	var categories []*models.Category
	if err := database.C.
		Where("is_active = ?", true).
		Order("sort_order ASC").Order("created_at DESC").
		Find(&categories).Error; err != nil {
		return nil, err
	}

	return BuildCategoryTree(categories), nil
}

// BuildCategoryTree links a flat, already sorted list through a parent to children index.
func BuildCategoryTree(categories []*models.Category) []*models.Category {
	children := make(map[uint][]*models.Category, len(categories))
	for _, item := range categories {
		if item.ParentID != nil {
			children[*item.ParentID] = append(children[*item.ParentID], item)
		}
	}

	roots := make([]*models.Category, 0)
	for _, item := range categories {
		item.Children = children[item.ID]
		if item.Children == nil {
			item.Children = make([]*models.Category, 0)
		}
		if item.ParentID == nil {
			roots = append(roots, item)
		}
	}

	return roots
}

func NewCategory(input CategoryInput) (models.Category, error) {
	var category models.Category

	slug := GenerateSlug(input.Name)
	if len(slug) == 0 {
		return category, ValidationError("category name must contain at least one letter or digit")
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if taken, err := SlugTaken(tx, &models.Category{}, slug, 0); err != nil {
			return err
		} else if taken {
			return ConflictError("category with slug %q already exists", slug)
		}

		if input.ParentID != nil {
			var count int64
			if err := tx.Model(&models.Category{}).Where("id = ?", *input.ParentID).Count(&count).Error; err != nil {
				return err
			} else if count == 0 {
				return NotFoundError("parent category")
			}
		}

		category = models.Category{
			Name:        input.Name,
			Slug:        slug,
			Description: input.Description,
			Image:       input.Image,
			ParentID:    input.ParentID,
			Order:       input.Order,
			IsActive:    lo.FromPtrOr(input.IsActive, true),
		}

		return wrapQueryError(tx.Create(&category).Error, "category")
	})

	return category, err
}

func EditCategory(id uint, patch CategoryPatch) (models.Category, error) {
	var category models.Category

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return wrapQueryError(err, "category")
		}

		if patch.Name != nil && *patch.Name != category.Name {
			slug := GenerateSlug(*patch.Name)
			if len(slug) == 0 {
				return ValidationError("category name must contain at least one letter or digit")
			}
			if taken, err := SlugTaken(tx, &models.Category{}, slug, category.ID); err != nil {
				return err
			} else if taken {
				return ConflictError("category with slug %q already exists", slug)
			}
			category.Name = *patch.Name
			category.Slug = slug
		}

		if patch.ParentID != nil {
			if *patch.ParentID == 0 {
				category.ParentID = nil
			} else {
				if err := checkCategoryParent(tx, category.ID, *patch.ParentID); err != nil {
					return err
				}
				category.ParentID = patch.ParentID
			}
		}

		if patch.Description != nil {
			category.Description = *patch.Description
		}
		if patch.Image != nil {
			category.Image = patch.Image
		}
		if patch.Order != nil {
			category.Order = *patch.Order
		}
		if patch.IsActive != nil {
			category.IsActive = *patch.IsActive
		}

		return wrapQueryError(tx.Omit("post_count").Save(&category).Error, "category")
	})

	return category, err
}

// checkCategoryParent rejects self parenting and any ancestor chain that loops back to id.
func checkCategoryParent(tx *gorm.DB, id, parentID uint) error {
	if id == parentID {
		return ValidationError("category cannot be its own parent")
	}

	visited := map[uint]bool{id: true}
	cursor := &parentID
	for cursor != nil {
		if visited[*cursor] {
			return ValidationError("category %d cannot be moved under its own descendant", id)
		}
		visited[*cursor] = true

		var parent models.Category
		if err := tx.Select("id", "parent_id").Where("id = ?", *cursor).First(&parent).Error; err != nil {
			if *cursor == parentID {
				return wrapQueryError(err, "parent category")
			}
			// Dangling ancestor, the chain ends here.
			return nil
		}
		cursor = parent.ParentID
	}

	return nil
}

// DeleteCategory refuses while child categories exist. Posts still pointing at it are left as they are.
func DeleteCategory(id uint) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return wrapQueryError(err, "category")
		}

		var children int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		} else if children > 0 {
			return ConflictError("category has %d child categories, move or delete them first", children)
		}

		if category.PostCount > 0 {
			log.Warn().Uint("category", id).Int64("posts", category.PostCount).
				Msg("Deleting a category that still has posts, they will keep the dangling reference...")
		}

		return tx.Delete(&category).Error
	})
}
