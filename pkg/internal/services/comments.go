package services

import (
	"context"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MaxAttachedReplies = 5

type CommentInput struct {
	Content  string
	PostID   uint
	ParentID *uint
}

type CommentQuery struct {
	PostID         *uint
	ExternalUserID string
	Status         string
	IncludeReplies bool
}

func validateCommentStatus(status string) error {
	if !lo.Contains(models.CommentStatuses, status) {
		return ValidationError("status must be one of %s", strings.Join(models.CommentStatuses, ", "))
	}
	return nil
}

func resolveCommenter(ctx context.Context, identity IdentityResolver, token string) (models.ExternalIdentity, error) {
	if len(token) == 0 {
		return models.ExternalIdentity{}, UnauthorizedError("a bearer token is required to comment")
	}
	if identity == nil {
		return models.ExternalIdentity{}, UnauthorizedError("identity provider is not configured")
	}

	profile, err := identity.Resolve(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("Unable to resolve commenter identity...")
		return profile, &Error{Kind: KindUnauthorized, Message: "unable to verify your identity", Cause: err}
	}
	if len(profile.Email) == 0 {
		return profile, UnauthorizedError("identity provider returned no email")
	}
	return profile, nil
}

func commenterName(profile models.ExternalIdentity) string {
	parts := []string{profile.Firstname}
	if profile.Middlename != nil {
		parts = append(parts, *profile.Middlename)
	}
	parts = append(parts, profile.Lastname)
	name := strings.Join(lo.Compact(lo.Map(parts, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})), " ")
	return lo.Ternary(len(name) > 0, name, profile.Email)
}

func NewComment(ctx context.Context, identity IdentityResolver, input CommentInput, token string, meta RequestMeta) (models.Comment, error) {
	var item models.Comment

	content := strings.TrimSpace(input.Content)
	if len(content) == 0 {
		return item, ValidationError("comment content is required")
	}

	profile, err := resolveCommenter(ctx, identity, token)
	if err != nil {
		return item, err
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("id = ?", input.PostID).First(&post).Error; err != nil {
			return wrapQueryError(err, "post")
		}

		if input.ParentID != nil {
			var parent models.Comment
			if err := tx.Where("id = ?", *input.ParentID).First(&parent).Error; err != nil {
				return wrapQueryError(err, "parent comment")
			}
			if parent.PostID != post.ID {
				return ValidationError("parent comment belongs to another post")
			}
			if parent.ParentID != nil {
				return ValidationError("replies cannot be nested more than one level")
			}
		}

		item = models.Comment{
			Content:        content,
			PostID:         post.ID,
			ParentID:       input.ParentID,
			ExternalUserID: profile.Email,
			AuthorName:     commenterName(profile),
			AuthorEmail:    profile.Email,
			AuthorAvatar:   profile.Picture,
			AuthorRanking:  datatypes.JSONSlice[string](lo.Ternary(profile.Ranking != nil, profile.Ranking, []string{})),
			Status:         models.CommentStatusPending,
			IPAddress:      meta.IP,
			UserAgent:      meta.UserAgent,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		if err := AdjustPostCommentCount(tx, post.ID, 1); err != nil {
			return err
		}
		if item.ParentID != nil {
			return AdjustCommentReplyCount(tx, *item.ParentID, 1)
		}
		return nil
	})

	return item, err
}

func loadOwnedComment(tx *gorm.DB, id uint, owner string) (models.Comment, error) {
	var item models.Comment
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		return item, wrapQueryError(err, "comment")
	}
	if item.ExternalUserID != owner {
		return item, ForbiddenError("only the author can change this comment")
	}
	return item, nil
}

func EditComment(ctx context.Context, identity IdentityResolver, id uint, content string, token string) (models.Comment, error) {
	var item models.Comment

	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return item, ValidationError("comment content is required")
	}

	profile, err := resolveCommenter(ctx, identity, token)
	if err != nil {
		return item, err
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		var err error
		if item, err = loadOwnedComment(tx, id, profile.Email); err != nil {
			return err
		}

		now := time.Now()
		item.Content = content
		item.IsEdited = true
		item.EditedAt = &now
		return tx.Model(&item).Updates(map[string]any{
			"content":   item.Content,
			"is_edited": true,
			"edited_at": now,
		}).Error
	})

	return item, err
}

// DeleteComment removes the comment and its direct replies, it returns how many rows went away.
func DeleteComment(ctx context.Context, identity IdentityResolver, id uint, token string) (int64, error) {
	profile, err := resolveCommenter(ctx, identity, token)
	if err != nil {
		return 0, err
	}

	var removed int64
	err = database.C.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedComment(tx, id, profile.Email)
		if err != nil {
			return err
		}

		removed, err = removeCommentTree(tx, item)
		return err
	})

	return removed, err
}

func removeCommentTree(tx *gorm.DB, item models.Comment) (int64, error) {
	replies := tx.Where("parent_id = ?", item.ID).Delete(&models.Comment{})
	if replies.Error != nil {
		return 0, replies.Error
	}
	if err := tx.Delete(&item).Error; err != nil {
		return 0, err
	}

	removed := replies.RowsAffected + 1
	if err := AdjustPostCommentCount(tx, item.PostID, -removed); err != nil {
		return removed, err
	}
	if item.ParentID != nil {
		if err := AdjustCommentReplyCount(tx, *item.ParentID, -1); err != nil {
			return removed, err
		}
	}

	log.Debug().Uint("comment", item.ID).Int64("removed", removed).Msg("Comment deleted with its replies.")
	return removed, nil
}

// ModerateComment is the administrator path, authorship is not checked.
func ModerateComment(id uint, status, reason string, moderatorID uint) (models.Comment, error) {
	var item models.Comment
	if err := validateCommentStatus(status); err != nil {
		return item, err
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return wrapQueryError(err, "comment")
		}

		now := time.Now()
		item.Status = status
		item.ModerationReason = lo.Ternary(len(reason) > 0, &reason, nil)
		item.ModeratedBy = &moderatorID
		item.ModeratedAt = &now
		return tx.Model(&item).Updates(map[string]any{
			"status":            item.Status,
			"moderation_reason": item.ModerationReason,
			"moderated_by":      moderatorID,
			"moderated_at":      now,
		}).Error
	})

	return item, err
}

// AdminDeleteComment removes a comment and its replies regardless of the author.
func AdminDeleteComment(id uint) (int64, error) {
	var removed int64
	err := database.C.Transaction(func(tx *gorm.DB) error {
		var item models.Comment
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return wrapQueryError(err, "comment")
		}
		var err error
		removed, err = removeCommentTree(tx, item)
		return err
	})
	return removed, err
}

func GetCommentWithID(id uint) (models.Comment, error) {
	var item models.Comment
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		return item, wrapQueryError(err, "comment")
	}
	return item, nil
}

func ListComments(query CommentQuery, take, offset int) ([]models.Comment, int64, error) {
	status := lo.Ternary(len(query.Status) > 0, query.Status, models.CommentStatusApproved)
	if err := validateCommentStatus(status); err != nil {
		return nil, 0, err
	}

	tx := database.C.Model(&models.Comment{}).Where("status = ?", status)
	if query.PostID != nil {
		tx = tx.Where("post_id = ?", *query.PostID)
	}
	if len(query.ExternalUserID) > 0 {
		tx = tx.Where("external_user_id = ?", query.ExternalUserID)
	}
	if query.IncludeReplies {
		tx = tx.Where("parent_id IS NULL")
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Comment
	if err := tx.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(take).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	if query.IncludeReplies {
		if err := attachReplies(items); err != nil {
			return items, count, err
		}
	}

	return items, count, nil
}

func GetCommentsByPost(postID uint, take, offset int, includeReplies bool) ([]models.Comment, int64, error) {
	var count int64
	if err := database.C.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, 0, err
	} else if count == 0 {
		return nil, 0, NotFoundError("post")
	}

	return ListComments(CommentQuery{PostID: &postID, IncludeReplies: includeReplies}, take, offset)
}

func GetUserComments(ctx context.Context, identity IdentityResolver, token string, status string, take, offset int) ([]models.Comment, int64, error) {
	profile, err := resolveCommenter(ctx, identity, token)
	if err != nil {
		return nil, 0, err
	}
	return ListComments(CommentQuery{ExternalUserID: profile.Email, Status: status}, take, offset)
}

// attachReplies hangs the most recent approved replies under each root.
func attachReplies(roots []models.Comment) error {
	if len(roots) == 0 {
		return nil
	}

	ids := lo.Map(roots, func(item models.Comment, _ int) uint { return item.ID })
	var replies []models.Comment
	if err := database.C.
		Where("parent_id IN ? AND status = ?", ids, models.CommentStatusApproved).
		Order("created_at DESC").Order("id DESC").
		Find(&replies).Error; err != nil {
		return err
	}

	grouped := lo.GroupBy(replies, func(item models.Comment) uint { return *item.ParentID })
	for idx := range roots {
		list := grouped[roots[idx].ID]
		if len(list) > MaxAttachedReplies {
			list = list[:MaxAttachedReplies]
		}
		roots[idx].Replies = lo.Ternary(list != nil, list, []models.Comment{})
	}

	return nil
}
