package services

import (
	"fmt"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostQuery struct {
	Search     string
	CategoryID *uint
	Category   string
	TagID      *uint
	Tag        string
	AuthorID   *uint
	Status     string
	IsFeatured *bool
	IsSticky   *bool
	SortBy     string
	SortOrder  string
}

var postSortColumns = map[string]string{
	"createdAt":     "created_at",
	"created_at":    "created_at",
	"updatedAt":     "updated_at",
	"updated_at":    "updated_at",
	"publishedAt":   "published_at",
	"published_at":  "published_at",
	"viewCount":     "view_count",
	"view_count":    "view_count",
	"likeCount":     "like_count",
	"like_count":    "like_count",
	"commentCount":  "comment_count",
	"comment_count": "comment_count",
	"title":         "title",
}

const postSearchVector = "setweight(to_tsvector('simple', coalesce(title, '')), 'A') || " +
	"setweight(to_tsvector('simple', coalesce(excerpt, '')), 'B') || " +
	"setweight(to_tsvector('simple', coalesce(content, '')), 'C')"

func PreloadGeneral(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Category").
		Preload("Tags").
		Preload("Author")
}

func FilterPostWithSearch(tx *gorm.DB, probe string) *gorm.DB {
	if len(probe) == 0 {
		return tx
	}
	if database.IsPostgres(tx) {
		return tx.Where(postSearchVector+" @@ plainto_tsquery('simple', ?)", probe)
	}
	like := "%" + strings.ToLower(probe) + "%"
	return tx.Where(
		"LOWER(title) LIKE ? OR LOWER(COALESCE(excerpt, '')) LIKE ? OR LOWER(content) LIKE ?",
		like, like, like,
	)
}

func FilterPostWithCategory(tx *gorm.DB, id *uint, slug string) *gorm.DB {
	if id != nil {
		tx = tx.Where("category_id = ?", *id)
	}
	if len(slug) > 0 {
		tx = tx.Where("category_id IN (?)", database.C.Model(&models.Category{}).Select("id").Where("slug = ?", SanitizeSlug(slug)))
	}
	return tx
}

func FilterPostWithTag(tx *gorm.DB, id *uint, slug string) *gorm.DB {
	table := postTagsTable(tx)
	if id != nil {
		tx = tx.Where(fmt.Sprintf("id IN (SELECT post_id FROM %s WHERE tag_id = ?)", table), *id)
	}
	if len(slug) > 0 {
		tags := database.C.Model(&models.Tag{}).Select("id").Where("slug = ?", SanitizeSlug(slug))
		tx = tx.Where(fmt.Sprintf("id IN (SELECT post_id FROM %s WHERE tag_id IN (?))", table), tags)
	}
	return tx
}

func FilterPostPublished(tx *gorm.DB) *gorm.DB {
	return tx.Where("status = ?", models.PostStatusPublished)
}

// orderPost always puts sticky posts first, then search relevance, then the requested field.
func orderPost(tx *gorm.DB, query PostQuery) *gorm.DB {
	column, ok := postSortColumns[query.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := lo.Ternary(strings.EqualFold(query.SortOrder, "asc"), "ASC", "DESC")

	parts := []string{"is_sticky DESC"}
	var vars []any
	if len(query.Search) > 0 {
		if database.IsPostgres(tx) {
			parts = append(parts, "ts_rank("+postSearchVector+", plainto_tsquery('simple', ?)) DESC")
			vars = append(vars, query.Search)
		} else {
			like := "%" + strings.ToLower(query.Search) + "%"
			parts = append(parts, "(CASE WHEN LOWER(title) LIKE ? THEN 3 ELSE 0 END + "+
				"CASE WHEN LOWER(COALESCE(excerpt, '')) LIKE ? THEN 2 ELSE 0 END + "+
				"CASE WHEN LOWER(content) LIKE ? THEN 1 ELSE 0 END) DESC")
			vars = append(vars, like, like, like)
		}
	}
	parts = append(parts, column+" "+direction, "id "+direction)

	return tx.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(parts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}})
}

func filterPost(tx *gorm.DB, query PostQuery) *gorm.DB {
	tx = FilterPostWithSearch(tx, query.Search)
	tx = FilterPostWithCategory(tx, query.CategoryID, query.Category)
	tx = FilterPostWithTag(tx, query.TagID, query.Tag)
	if query.AuthorID != nil {
		tx = tx.Where("author_id = ?", *query.AuthorID)
	}
	if len(query.Status) > 0 {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *query.IsFeatured)
	}
	if query.IsSticky != nil {
		tx = tx.Where("is_sticky = ?", *query.IsSticky)
	}
	return tx
}

func ListPosts(query PostQuery, take int, offset int) ([]models.Post, int64, error) {
	if len(query.Status) > 0 {
		if err := validatePostStatus(query.Status); err != nil {
			return nil, 0, err
		}
	}

	var count int64
	if err := filterPost(database.C.Model(&models.Post{}), query).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Post
	tx := orderPost(filterPost(database.C, query), query)
	if err := PreloadGeneral(tx).Offset(offset).Limit(take).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func ListFeaturedPosts(limit int) ([]models.Post, error) {
	var items []models.Post
	err := PreloadGeneral(FilterPostPublished(database.C)).
		Where("is_featured = ?", true).
		Order("is_sticky DESC").Order("published_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// GetPost reads a post without touching its view counter.
func GetPost(id uint) (models.Post, error) {
	var item models.Post
	if err := PreloadGeneral(database.C).Where("id = ?", id).First(&item).Error; err != nil {
		return item, wrapQueryError(err, "post")
	}
	return item, nil
}

// PostVisibleTo reports whether viewer may read the post. Unpublished posts stay
// with their author and administrators, viewer is nil for anonymous reads.
func PostVisibleTo(post models.Post, viewer *models.User) bool {
	if post.Status == models.PostStatusPublished {
		return true
	}
	return viewer != nil && (viewer.ID == post.AuthorID || viewer.IsAdmin())
}

// GetPostBySlug counts the read as a view and returns the post carrying the new count.
// Posts hidden from viewer are reported missing and their counter is left alone.
func GetPostBySlug(slug string, viewer *models.User) (models.Post, error) {
	var item models.Post

	slug = SanitizeSlug(slug)
	if len(slug) == 0 {
		return item, NotFoundError("post")
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		var head models.Post
		if err := tx.Select("id", "status", "author_id").Where("slug = ?", slug).First(&head).Error; err != nil {
			return wrapQueryError(err, "post")
		}
		if !PostVisibleTo(head, viewer) {
			return NotFoundError("post")
		}
		if err := tx.Model(&head).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
			return err
		}
		return PreloadGeneral(tx).Where("id = ?", head.ID).First(&item).Error
	})

	return item, err
}

// GetRelatedPosts finds published posts sharing the category or any tag, newest first.
func GetRelatedPosts(id uint, limit int) ([]models.Post, error) {
	var item models.Post
	if err := database.C.Preload("Tags").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrapQueryError(err, "post")
	}

	tx := FilterPostPublished(database.C).Where("id <> ?", item.ID)
	tagIDs := lo.Map(item.Tags, func(tag models.Tag, _ int) uint { return tag.ID })
	if len(tagIDs) > 0 {
		tx = tx.Where(
			fmt.Sprintf("category_id = ? OR id IN (SELECT post_id FROM %s WHERE tag_id IN ?)", postTagsTable(tx)),
			item.CategoryID, tagIDs,
		)
	} else {
		tx = tx.Where("category_id = ?", item.CategoryID)
	}

	var items []models.Post
	err := PreloadGeneral(tx).
		Order("published_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

type SlugAvailability struct {
	Slug        string   `json:"slug"`
	Available   bool     `json:"available"`
	Suggestions []string `json:"suggestions"`
}

const maxSlugSuggestions = 5

// CheckSlugAvailability offers only alternatives that were confirmed free.
func CheckSlugAvailability(slug string) (SlugAvailability, error) {
	slug = NormalizePostSlug(slug)
	result := SlugAvailability{Slug: slug, Suggestions: make([]string, 0)}
	if err := ValidatePostSlug(slug); err != nil {
		return result, err
	}

	taken, err := SlugTaken(database.C, &models.Post{}, slug, 0)
	if err != nil {
		return result, err
	} else if !taken {
		result.Available = true
		return result, nil
	}

	year := time.Now().Year()
	candidates := []string{fmt.Sprintf("%s-%d", slug, year)}
	for idx := 1; idx <= 10; idx++ {
		candidates = append(candidates, fmt.Sprintf("%s-%d", slug, idx))
	}
	candidates = append(candidates, fmt.Sprintf("%s-%d-%d", slug, year, time.Now().Unix()%1000))

	for _, candidate := range candidates {
		if len(result.Suggestions) >= maxSlugSuggestions {
			break
		}
		if ValidatePostSlug(candidate) != nil {
			continue
		}
		if taken, err := SlugTaken(database.C, &models.Post{}, candidate, 0); err != nil {
			return result, err
		} else if !taken {
			result.Suggestions = append(result.Suggestions, candidate)
		}
	}

	return result, nil
}
