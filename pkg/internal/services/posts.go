package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PostInput struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         *string
	Thumbnail       *string
	CategoryID      uint
	TagIDs          []uint
	RelatedProducts []models.RelatedProduct
	Status          string
	IsFeatured      bool
	IsSticky        bool
	PublishedAt     *time.Time
}

// PostPatch leaves nil fields untouched, TagIDs and RelatedProducts replace the whole set.
type PostPatch struct {
	Title           *string
	Slug            *string
	Content         *string
	Excerpt         *string
	Thumbnail       *string
	CategoryID      *uint
	TagIDs          *[]uint
	RelatedProducts *[]models.RelatedProduct
	Status          *string
	IsFeatured      *bool
	IsSticky        *bool
	PublishedAt     *time.Time
}

func validatePostStatus(status string) error {
	if !lo.Contains(models.PostStatuses, status) {
		return ValidationError("status must be one of %s", strings.Join(models.PostStatuses, ", "))
	}
	return nil
}

func preparePostSlug(slug string) (string, error) {
	slug = NormalizePostSlug(slug)
	return slug, ValidatePostSlug(slug)
}

// ResolveRelatedProducts refreshes each item from the catalog. A failed lookup keeps the caller's data.
func ResolveRelatedProducts(ctx context.Context, catalog ProductCatalog, items []models.RelatedProduct) []models.RelatedProduct {
	out := make([]models.RelatedProduct, 0, len(items))
	for _, item := range items {
		if catalog == nil || len(item.URLKey) == 0 {
			out = append(out, item)
			continue
		}
		snapshot, err := catalog.Snapshot(ctx, item.URLKey)
		if err != nil {
			log.Warn().Err(err).Str("url_key", item.URLKey).Msg("Unable to validate related product, keeping submitted data...")
			out = append(out, item)
			continue
		}
		out = append(out, snapshot)
	}
	return out
}

func ensureCategoryExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	} else if count == 0 {
		return NotFoundError("category")
	}
	return nil
}

func postTagsTable(tx *gorm.DB) string {
	return tx.NamingStrategy.JoinTableName("post_tags")
}

func linkPostTags(tx *gorm.DB, postID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := lo.Map(tagIDs, func(id uint, _ int) map[string]any {
		return map[string]any{"post_id": postID, "tag_id": id}
	})
	return tx.Table(postTagsTable(tx)).Create(rows).Error
}

func unlinkPostTags(tx *gorm.DB, postID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE post_id = ? AND tag_id IN ?", postTagsTable(tx)),
		postID, tagIDs,
	).Error
}

func NewPost(ctx context.Context, catalog ProductCatalog, input PostInput, authorID uint, meta RequestMeta) (models.Post, error) {
	var item models.Post

	slug, err := preparePostSlug(input.Slug)
	if err != nil {
		return item, err
	}
	status := lo.Ternary(len(input.Status) > 0, input.Status, models.PostStatusDraft)
	if err := validatePostStatus(status); err != nil {
		return item, err
	}

	log.Debug().Str("slug", slug).Uint("author", authorID).Msg("Posting a post...")
	start := time.Now()

	products := ResolveRelatedProducts(ctx, catalog, input.RelatedProducts)
	tagIDs := lo.Uniq(input.TagIDs)

	err = database.C.Transaction(func(tx *gorm.DB) error {
		if taken, err := SlugTaken(tx, &models.Post{}, slug, 0); err != nil {
			return err
		} else if taken {
			return ConflictError("post with slug %q already exists", slug)
		}
		if err := ensureCategoryExists(tx, input.CategoryID); err != nil {
			return err
		}
		if _, err := ensureTagsExist(tx, tagIDs); err != nil {
			return err
		}
		var authors int64
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).Count(&authors).Error; err != nil {
			return err
		} else if authors == 0 {
			return NotFoundError("author")
		}

		item = models.Post{
			Title:           input.Title,
			Slug:            slug,
			Content:         input.Content,
			Excerpt:         input.Excerpt,
			Thumbnail:       input.Thumbnail,
			Language:        DetectLanguage(input.Title + "\n" + input.Content),
			CategoryID:      input.CategoryID,
			AuthorID:        authorID,
			RelatedProducts: datatypes.JSONSlice[models.RelatedProduct](products),
			Status:          status,
			PublishedAt:     input.PublishedAt,
			IsFeatured:      input.IsFeatured,
			IsSticky:        input.IsSticky,
		}
		if item.Status == models.PostStatusPublished && item.PublishedAt == nil {
			item.PublishedAt = lo.ToPtr(time.Now())
		}

		if err := tx.Omit("Category", "Tags", "Author").Create(&item).Error; err != nil {
			return wrapQueryError(err, "post")
		}
		if err := linkPostTags(tx, item.ID, tagIDs); err != nil {
			return err
		}

		if err := AdjustCategoryPostCount(tx, item.CategoryID, 1); err != nil {
			return err
		}
		if err := AdjustTagPostCount(tx, tagIDs, 1); err != nil {
			return err
		}
		if err := AdjustUserPostCount(tx, authorID, 1); err != nil {
			return err
		}

		RecordActivity(tx, authorID, ActivityPostCreate, slug, meta)
		return nil
	})
	if err != nil {
		return item, err
	}

	log.Debug().Dur("elapsed", time.Since(start)).Uint("post", item.ID).Msg("The post is posted.")
	return GetPost(item.ID)
}

func EditPost(ctx context.Context, catalog ProductCatalog, id uint, patch PostPatch, userID uint, meta RequestMeta) (models.Post, error) {
	var item models.Post

	if patch.Slug != nil {
		slug, err := preparePostSlug(*patch.Slug)
		if err != nil {
			return item, err
		}
		patch.Slug = &slug
	}
	if patch.Status != nil {
		if err := validatePostStatus(*patch.Status); err != nil {
			return item, err
		}
	}

	var products []models.RelatedProduct
	if patch.RelatedProducts != nil {
		products = ResolveRelatedProducts(ctx, catalog, *patch.RelatedProducts)
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Tags").Where("id = ?", id).First(&item).Error; err != nil {
			return wrapQueryError(err, "post")
		}
		if item.AuthorID != userID {
			return ForbiddenError("only the author can edit this post")
		}

		if patch.Slug != nil && *patch.Slug != item.Slug {
			if taken, err := SlugTaken(tx, &models.Post{}, *patch.Slug, item.ID); err != nil {
				return err
			} else if taken {
				return ConflictError("post with slug %q already exists", *patch.Slug)
			}
			item.Slug = *patch.Slug
		}

		if patch.CategoryID != nil && *patch.CategoryID != item.CategoryID {
			if err := ensureCategoryExists(tx, *patch.CategoryID); err != nil {
				return err
			}
			if err := AdjustCategoryPostCount(tx, item.CategoryID, -1); err != nil {
				return err
			}
			if err := AdjustCategoryPostCount(tx, *patch.CategoryID, 1); err != nil {
				return err
			}
			item.CategoryID = *patch.CategoryID
		}

		if patch.TagIDs != nil {
			next := lo.Uniq(*patch.TagIDs)
			if _, err := ensureTagsExist(tx, next); err != nil {
				return err
			}
			previous := lo.Map(item.Tags, func(tag models.Tag, _ int) uint { return tag.ID })
			removed, added := lo.Difference(previous, next)
			if err := unlinkPostTags(tx, item.ID, removed); err != nil {
				return err
			}
			if err := linkPostTags(tx, item.ID, added); err != nil {
				return err
			}
			if err := AdjustTagPostCount(tx, removed, -1); err != nil {
				return err
			}
			if err := AdjustTagPostCount(tx, added, 1); err != nil {
				return err
			}
		}

		if patch.Title != nil {
			item.Title = *patch.Title
		}
		if patch.Content != nil {
			item.Content = *patch.Content
		}
		if patch.Title != nil || patch.Content != nil {
			item.Language = DetectLanguage(item.Title + "\n" + item.Content)
		}
		if patch.Excerpt != nil {
			item.Excerpt = patch.Excerpt
		}
		if patch.Thumbnail != nil {
			item.Thumbnail = patch.Thumbnail
		}
		if patch.RelatedProducts != nil {
			item.RelatedProducts = datatypes.JSONSlice[models.RelatedProduct](products)
		}
		if patch.IsFeatured != nil {
			item.IsFeatured = *patch.IsFeatured
		}
		if patch.IsSticky != nil {
			item.IsSticky = *patch.IsSticky
		}
		if patch.PublishedAt != nil {
			item.PublishedAt = patch.PublishedAt
		}
		if patch.Status != nil {
			item.Status = *patch.Status
		}
		if item.Status == models.PostStatusPublished && item.PublishedAt == nil {
			item.PublishedAt = lo.ToPtr(time.Now())
		}

		if err := tx.
			Omit("Category", "Tags", "Author", "view_count", "like_count", "comment_count").
			Save(&item).Error; err != nil {
			return wrapQueryError(err, "post")
		}

		RecordActivity(tx, userID, ActivityPostUpdate, item.Slug, meta)
		return nil
	})
	if err != nil {
		return item, err
	}

	return GetPost(item.ID)
}

// DeletePost drops the post with its comments and tag links, then releases every counter it held.
func DeletePost(id uint, userID uint, meta RequestMeta) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var item models.Post
		if err := tx.Preload("Tags").Where("id = ?", id).First(&item).Error; err != nil {
			return wrapQueryError(err, "post")
		}
		if item.AuthorID != userID {
			return ForbiddenError("only the author can delete this post")
		}

		tagIDs := lo.Map(item.Tags, func(tag models.Tag, _ int) uint { return tag.ID })

		if err := AdjustCategoryPostCount(tx, item.CategoryID, -1); err != nil {
			return err
		}
		if err := AdjustTagPostCount(tx, tagIDs, -1); err != nil {
			return err
		}
		if err := AdjustUserPostCount(tx, item.AuthorID, -1); err != nil {
			return err
		}

		if err := unlinkPostTags(tx, item.ID, tagIDs); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", item.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		RecordActivity(tx, userID, ActivityPostDelete, item.Slug, meta)
		return nil
	})
}

func LikePost(id uint) (int64, error) {
	var item models.Post
	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ?", id).First(&item).Error; err != nil {
			return wrapQueryError(err, "post")
		}
		if err := tx.Model(&item).UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Select("like_count").Where("id = ?", id).First(&item).Error
	})
	return item.LikeCount, err
}

const TruncatePostContentThreshold = 160

// TruncatePostContent shortens content for list views, excerpt wins when present.
func TruncatePostContent(post models.Post) models.Post {
	if post.Excerpt != nil && len(*post.Excerpt) > 0 {
		post.Content = *post.Excerpt
		return post
	}
	if runes := []rune(post.Content); len(runes) > TruncatePostContentThreshold {
		post.Content = string(runes[:TruncatePostContentThreshold]) + "..."
	}
	return post
}
