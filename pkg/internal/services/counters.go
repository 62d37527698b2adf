package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func adjustCounter(tx *gorm.DB, model any, column string, delta int64, ids ...uint) error {
	if delta == 0 || len(ids) == 0 {
		return nil
	}
	return tx.Model(model).
		Where("id IN ?", ids).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func AdjustCategoryPostCount(tx *gorm.DB, id uint, delta int64) error {
	return adjustCounter(tx, &models.Category{}, "post_count", delta, id)
}

func AdjustTagPostCount(tx *gorm.DB, ids []uint, delta int64) error {
	return adjustCounter(tx, &models.Tag{}, "post_count", delta, ids...)
}

func AdjustUserPostCount(tx *gorm.DB, id uint, delta int64) error {
	return adjustCounter(tx, &models.User{}, "post_count", delta, id)
}

func AdjustPostCommentCount(tx *gorm.DB, id uint, delta int64) error {
	return adjustCounter(tx, &models.Post{}, "comment_count", delta, id)
}

func AdjustCommentReplyCount(tx *gorm.DB, id uint, delta int64) error {
	return adjustCounter(tx, &models.Comment{}, "reply_count", delta, id)
}

type ReconcileReport struct {
	Categories int64 `json:"categories"`
	Tags       int64 `json:"tags"`
	Users      int64 `json:"users"`
	Posts      int64 `json:"posts"`
	Comments   int64 `json:"comments"`
}

func (v ReconcileReport) Total() int64 {
	return v.Categories + v.Tags + v.Users + v.Posts + v.Comments
}

// ReconcileCounters recomputes every denormalized counter from actual membership.
// Only rows that drifted are written, the report counts them per table.
func ReconcileCounters() (ReconcileReport, error) {
	var report ReconcileReport

	naming := database.C.NamingStrategy
	categories := naming.TableName("Category")
	tags := naming.TableName("Tag")
	users := naming.TableName("User")
	posts := naming.TableName("Post")
	comments := naming.TableName("Comment")
	postTags := naming.JoinTableName("post_tags")

	jobs := []struct {
		model  any
		column string
		count  string
		out    *int64
	}{
		{&models.Category{}, "post_count", fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.category_id = %s.id)", posts, posts, categories), &report.Categories},
		{&models.Tag{}, "post_count", fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.tag_id = %s.id)", postTags, postTags, tags), &report.Tags},
		{&models.User{}, "post_count", fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.author_id = %s.id)", posts, posts, users), &report.Users},
		{&models.Post{}, "comment_count", fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.post_id = %s.id)", comments, comments, posts), &report.Posts},
		{&models.Comment{}, "reply_count", fmt.Sprintf("(SELECT COUNT(*) FROM %s AS replies WHERE replies.parent_id = %s.id)", comments, comments), &report.Comments},
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		for _, job := range jobs {
			result := tx.Model(job.model).
				Where(fmt.Sprintf("%s <> %s", job.column, job.count)).
				UpdateColumn(job.column, gorm.Expr(job.count))
			if result.Error != nil {
				return fmt.Errorf("unable to reconcile %s: %v", job.column, result.Error)
			}
			*job.out = result.RowsAffected
		}
		return nil
	})

	return report, err
}

func DoAutoCounterReconcile() {
	log.Debug().Msg("Now reconciling denormalized counters...")
	start := time.Now()

	report, err := ReconcileCounters()
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when reconciling counters...")
		return
	}

	if report.Total() > 0 {
		log.Warn().
			Int64("categories", report.Categories).
			Int64("tags", report.Tags).
			Int64("users", report.Users).
			Int64("posts", report.Posts).
			Int64("comments", report.Comments).
			Msg("Counters had drifted and were repaired.")
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Reconciled denormalized counters.")
}
