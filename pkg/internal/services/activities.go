package services

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	ActivityLogin      = "auth.login"
	ActivityLogout     = "auth.logout"
	ActivityPassword   = "auth.password"
	ActivityPostCreate = "posts.create"
	ActivityPostUpdate = "posts.update"
	ActivityPostDelete = "posts.delete"
)

// RequestMeta is what the http layer knows about the caller.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// RecordActivity never fails the caller, a lost audit row is only logged.
func RecordActivity(tx *gorm.DB, userID uint, action, target string, meta RequestMeta) {
	if tx == nil {
		tx = database.C
	}
	activity := models.UserActivity{
		UserID:    userID,
		Action:    action,
		Target:    target,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := tx.Create(&activity).Error; err != nil {
		log.Warn().Err(err).Uint("user", userID).Str("action", action).Msg("Unable to record user activity...")
	}
}

func ListUserActivities(userID uint, take, offset int) ([]models.UserActivity, int64, error) {
	tx := database.C.Model(&models.UserActivity{}).Where("user_id = ?", userID)

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.UserActivity
	err := tx.Order("created_at DESC").Offset(offset).Limit(take).Find(&activities).Error
	return activities, count, err
}
