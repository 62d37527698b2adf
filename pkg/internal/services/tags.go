package services

import (
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type TagInput struct {
	Name        string
	Description string
	IsActive    *bool
}

type TagPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func ListTags(take int, offset int, probe string, active *bool) ([]models.Tag, int64, error) {
	tx := database.C.Model(&models.Tag{})
	if len(probe) > 0 {
		probe = "%" + strings.ToLower(probe) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR slug LIKE ?", probe, probe)
	}
	if active != nil {
		tx = tx.Where("is_active = ?", *active)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var tags []models.Tag
	err := tx.Order("post_count DESC").Order("name ASC").
		Offset(offset).Limit(take).
		Find(&tags).Error

	return tags, count, err
}

func GetTagWithID(id uint) (models.Tag, error) {
	var tag models.Tag
	if err := database.C.Where("id = ?", id).First(&tag).Error; err != nil {
		return tag, wrapQueryError(err, "tag")
	}
	return tag, nil
}

func GetTagWithSlug(slug string) (models.Tag, error) {
	var tag models.Tag
	if err := database.C.Where("slug = ?", SanitizeSlug(slug)).First(&tag).Error; err != nil {
		return tag, wrapQueryError(err, "tag")
	}
	return tag, nil
}

func NewTag(input TagInput) (models.Tag, error) {
	var tag models.Tag

	slug := GenerateSlug(input.Name)
	if len(slug) == 0 {
		return tag, ValidationError("tag name must contain at least one letter or digit")
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if taken, err := SlugTaken(tx, &models.Tag{}, slug, 0); err != nil {
			return err
		} else if taken {
			return ConflictError("tag with slug %q already exists", slug)
		}

		tag = models.Tag{
			Name:        input.Name,
			Slug:        slug,
			Description: input.Description,
			IsActive:    lo.FromPtrOr(input.IsActive, true),
		}
		return wrapQueryError(tx.Create(&tag).Error, "tag")
	})

	return tag, err
}

func EditTag(id uint, patch TagPatch) (models.Tag, error) {
	var tag models.Tag

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			return wrapQueryError(err, "tag")
		}

		if patch.Name != nil && *patch.Name != tag.Name {
			slug := GenerateSlug(*patch.Name)
			if len(slug) == 0 {
				return ValidationError("tag name must contain at least one letter or digit")
			}
			if taken, err := SlugTaken(tx, &models.Tag{}, slug, tag.ID); err != nil {
				return err
			} else if taken {
				return ConflictError("tag with slug %q already exists", slug)
			}
			tag.Name = *patch.Name
			tag.Slug = slug
		}
		if patch.Description != nil {
			tag.Description = *patch.Description
		}
		if patch.IsActive != nil {
			tag.IsActive = *patch.IsActive
		}

		return wrapQueryError(tx.Omit("post_count", "Posts").Save(&tag).Error, "tag")
	})

	return tag, err
}

// DeleteTag removes the tag even while posts carry it, only the join rows go with it.
func DeleteTag(id uint) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			return wrapQueryError(err, "tag")
		}

		if err := tx.Model(&tag).Association("Posts").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// ensureTagsExist checks each id one by one so the error names the missing tag.
func ensureTagsExist(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		var tag models.Tag
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			if wrapped := wrapQueryError(err, "tag"); IsKind(wrapped, KindNotFound) {
				return nil, NotFoundError(fmt.Sprintf("tag %d", id))
			} else {
				return nil, wrapped
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
