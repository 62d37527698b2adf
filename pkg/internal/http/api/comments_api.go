package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listComments(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)

	query := services.CommentQuery{
		Status:         c.Query("status"),
		IncludeReplies: c.QueryBool("includeReplies", false),
	}
	if len(c.Query("postId")) > 0 {
		id, err := models.ParseRef(c.Query("postId"))
		if err != nil {
			return services.ValidationError("postId: %v", err)
		}
		query.PostID = &id
	}
	if len(query.Status) > 0 && query.Status != models.CommentStatusApproved {
		if err := exts.EnsureAdmin(c); err != nil {
			return err
		}
	}

	items, count, err := services.ListComments(query, limit, offset)
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func listPostComments(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	items, count, err := services.GetCommentsByPost(id, limit, offset, c.QueryBool("includeReplies", true))
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func getComment(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	item, err := services.GetCommentWithID(id)
	if err != nil {
		return err
	}
	if item.Status != models.CommentStatusApproved && exts.EnsureAdmin(c) != nil {
		return services.NotFoundError("comment")
	}

	return c.JSON(item)
}

func (h *handlers) listMyComments(c *fiber.Ctx) error {
	page, limit, offset := exts.GetPagination(c)

	items, count, err := services.GetUserComments(
		c.Context(),
		h.deps.Identity,
		exts.BearerToken(c),
		c.Query("status"),
		limit, offset,
	)
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func (h *handlers) createComment(c *fiber.Ctx) error {
	var data struct {
		Content string      `json:"content" validate:"required,max=4096"`
		Post    models.Ref  `json:"post" validate:"required"`
		Parent  *models.Ref `json:"parent"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewComment(c.Context(), h.deps.Identity, services.CommentInput{
		Content:  data.Content,
		PostID:   data.Post.Uint(),
		ParentID: refPtr(data.Parent),
	}, exts.BearerToken(c), exts.RequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *handlers) editComment(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	var data struct {
		Content string `json:"content" validate:"required,max=4096"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.EditComment(c.Context(), h.deps.Identity, id, data.Content, exts.BearerToken(c))
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func (h *handlers) deleteComment(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	removed, err := services.DeleteComment(c.Context(), h.deps.Identity, id, exts.BearerToken(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"removed": removed})
}
