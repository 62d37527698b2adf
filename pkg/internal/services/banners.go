package services

import (
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type BannerInput struct {
	Title    string
	ImageURL string
	LinkURL  *string
	Position string
	Order    int
	IsActive *bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

type BannerPatch struct {
	Title    *string
	ImageURL *string
	LinkURL  *string
	Position *string
	Order    *int
	IsActive *bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

func validateBannerWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return ValidationError("banner cannot end before it starts")
	}
	return nil
}

func ListBanners(take, offset int, position string) ([]models.Banner, int64, error) {
	tx := database.C.Model(&models.Banner{})
	if len(position) > 0 {
		tx = tx.Where("position = ?", position)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var banners []models.Banner
	err := tx.Order("sort_order ASC").Order("created_at DESC").Offset(offset).Limit(take).Find(&banners).Error
	return banners, count, err
}

// ListActiveBanners returns active banners whose display window covers now.
func ListActiveBanners(position string) ([]models.Banner, error) {
	now := time.Now()
	tx := database.C.
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now)
	if len(position) > 0 {
		tx = tx.Where("position = ?", position)
	}

	var banners []models.Banner
	err := tx.Order("sort_order ASC").Order("created_at DESC").Find(&banners).Error
	return banners, err
}

func GetBannerWithID(id uint) (models.Banner, error) {
	var banner models.Banner
	if err := database.C.Where("id = ?", id).First(&banner).Error; err != nil {
		return banner, wrapQueryError(err, "banner")
	}
	return banner, nil
}

// NewBanner suffixes the slug on collision instead of failing like categories do.
func NewBanner(input BannerInput) (models.Banner, error) {
	var banner models.Banner
	if err := validateBannerWindow(input.StartsAt, input.EndsAt); err != nil {
		return banner, err
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		slug, err := UniqueSlug(tx, &models.Banner{}, GenerateSlug(input.Title), 0)
		if err != nil {
			return err
		}

		banner = models.Banner{
			Title:    input.Title,
			Slug:     slug,
			ImageURL: input.ImageURL,
			LinkURL:  input.LinkURL,
			Position: lo.Ternary(len(input.Position) > 0, input.Position, "home"),
			Order:    input.Order,
			IsActive: lo.FromPtrOr(input.IsActive, true),
			StartsAt: input.StartsAt,
			EndsAt:   input.EndsAt,
		}
		return wrapQueryError(tx.Create(&banner).Error, "banner")
	})

	return banner, err
}

func EditBanner(id uint, patch BannerPatch) (models.Banner, error) {
	var banner models.Banner

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&banner).Error; err != nil {
			return wrapQueryError(err, "banner")
		}

		if patch.Title != nil && *patch.Title != banner.Title {
			slug, err := UniqueSlug(tx, &models.Banner{}, GenerateSlug(*patch.Title), banner.ID)
			if err != nil {
				return err
			}
			banner.Title = *patch.Title
			banner.Slug = slug
		}
		if patch.ImageURL != nil {
			banner.ImageURL = *patch.ImageURL
		}
		if patch.LinkURL != nil {
			banner.LinkURL = patch.LinkURL
		}
		if patch.Position != nil {
			banner.Position = *patch.Position
		}
		if patch.Order != nil {
			banner.Order = *patch.Order
		}
		if patch.IsActive != nil {
			banner.IsActive = *patch.IsActive
		}
		if patch.StartsAt != nil {
			banner.StartsAt = patch.StartsAt
		}
		if patch.EndsAt != nil {
			banner.EndsAt = patch.EndsAt
		}
		if err := validateBannerWindow(banner.StartsAt, banner.EndsAt); err != nil {
			return err
		}

		return wrapQueryError(tx.Save(&banner).Error, "banner")
	})

	return banner, err
}

func DeleteBanner(id uint) error {
	result := database.C.Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return result.Error
	} else if result.RowsAffected == 0 {
		return NotFoundError("banner")
	}
	return nil
}
