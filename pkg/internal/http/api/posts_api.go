package api

import (
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// universalPostQuery builds the listing query. Anyone but an administrator only sees
// published posts, unless they list their own.
func universalPostQuery(c *fiber.Ctx) (services.PostQuery, error) {
	query := services.PostQuery{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Tag:        c.Query("tag"),
		Status:     c.Query("status"),
		IsFeatured: exts.QueryBoolPtr(c, "featured"),
		IsSticky:   exts.QueryBoolPtr(c, "sticky"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}

	for key, target := range map[string]**uint{
		"categoryId": &query.CategoryID,
		"tagId":      &query.TagID,
		"authorId":   &query.AuthorID,
	} {
		if len(c.Query(key)) == 0 {
			continue
		}
		id, err := models.ParseRef(c.Query(key))
		if err != nil {
			return query, services.ValidationError("%s: %v", key, err)
		}
		*target = &id
	}

	user, authenticated := exts.GetUser(c)
	switch {
	case authenticated && user.IsAdmin():
	case authenticated && query.AuthorID != nil && *query.AuthorID == user.ID:
	default:
		query.Status = models.PostStatusPublished
	}

	return query, nil
}

func listPost(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)

	query, err := universalPostQuery(c)
	if err != nil {
		return err
	}

	items, count, err := services.ListPosts(query, limit, offset)
	if err != nil {
		return err
	}

	if c.QueryBool("truncate", true) {
		items = lo.Map(items, func(item models.Post, _ int) models.Post {
			return services.TruncatePostContent(item)
		})
	}

	return exts.Paginated(c, items, page, limit, count)
}

func listFeaturedPost(c *fiber.Ctx) error {
	limit := lo.Clamp(c.QueryInt("limit", 5), 1, exts.MaxPageLimit)

	items, err := services.ListFeaturedPosts(limit)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func checkPostSlug(c *fiber.Ctx) error {
	if len(c.Query("slug")) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "slug is required")
	}

	result, err := services.CheckSlugAvailability(c.Query("slug"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func viewerOf(c *fiber.Ctx) *models.User {
	if user, ok := exts.GetUser(c); ok {
		return &user
	}
	return nil
}

func getPostBySlug(c *fiber.Ctx) error {
	item, err := services.GetPostBySlug(c.Params("slug"), viewerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func getPost(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	item, err := services.GetPost(id)
	if err != nil {
		return err
	}
	if !services.PostVisibleTo(item, viewerOf(c)) {
		return services.NotFoundError("post")
	}

	return c.JSON(item)
}

func listRelatedPost(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}
	limit := lo.Clamp(c.QueryInt("limit", 5), 1, 20)

	items, err := services.GetRelatedPosts(id, limit)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

type postRequest struct {
	Title           string                  `json:"title" validate:"required,max=256"`
	Slug            string                  `json:"slug" validate:"required,min=3,max=100"`
	Content         string                  `json:"content" validate:"required"`
	Excerpt         *string                 `json:"excerpt" validate:"omitempty,max=1024"`
	Thumbnail       *string                 `json:"thumbnail"`
	Category        models.Ref              `json:"category" validate:"required"`
	Tags            []models.Ref            `json:"tags"`
	RelatedProducts []models.RelatedProduct `json:"related_products" validate:"omitempty,dive"`
	Status          string                  `json:"status" validate:"omitempty,oneof=draft published archived"`
	IsFeatured      bool                    `json:"is_featured"`
	IsSticky        bool                    `json:"is_sticky"`
	PublishedAt     *time.Time              `json:"published_at"`
}

func (h *handlers) createPost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	var data postRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewPost(c.Context(), h.deps.Catalog, services.PostInput{
		Title:           data.Title,
		Slug:            data.Slug,
		Content:         data.Content,
		Excerpt:         data.Excerpt,
		Thumbnail:       data.Thumbnail,
		CategoryID:      data.Category.Uint(),
		TagIDs:          models.RefsToUint(data.Tags),
		RelatedProducts: data.RelatedProducts,
		Status:          data.Status,
		IsFeatured:      data.IsFeatured,
		IsSticky:        data.IsSticky,
		PublishedAt:     data.PublishedAt,
	}, user.ID, exts.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *handlers) editPost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	var data struct {
		Title           *string                  `json:"title" validate:"omitempty,max=256"`
		Slug            *string                  `json:"slug" validate:"omitempty,min=3,max=100"`
		Content         *string                  `json:"content"`
		Excerpt         *string                  `json:"excerpt" validate:"omitempty,max=1024"`
		Thumbnail       *string                  `json:"thumbnail"`
		Category        *models.Ref              `json:"category"`
		Tags            *[]models.Ref            `json:"tags"`
		RelatedProducts *[]models.RelatedProduct `json:"related_products"`
		Status          *string                  `json:"status" validate:"omitempty,oneof=draft published archived"`
		IsFeatured      *bool                    `json:"is_featured"`
		IsSticky        *bool                    `json:"is_sticky"`
		PublishedAt     *time.Time               `json:"published_at"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	patch := services.PostPatch{
		Title:           data.Title,
		Slug:            data.Slug,
		Content:         data.Content,
		Excerpt:         data.Excerpt,
		Thumbnail:       data.Thumbnail,
		CategoryID:      refPtr(data.Category),
		RelatedProducts: data.RelatedProducts,
		Status:          data.Status,
		IsFeatured:      data.IsFeatured,
		IsSticky:        data.IsSticky,
		PublishedAt:     data.PublishedAt,
	}
	if data.Tags != nil {
		patch.TagIDs = lo.ToPtr(models.RefsToUint(*data.Tags))
	}

	item, err := services.EditPost(c.Context(), h.deps.Catalog, id, patch, user.ID, exts.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deletePost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	if err := services.DeletePost(id, user.ID, exts.RequestMeta(c)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusOK)
}

func likePost(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	count, err := services.LikePost(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"like_count": count})
}
