package services

import (
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultActivityRetention = 90 * 24 * time.Hour

func DoAutoDatabaseCleanup() {
	log.Debug().Time("now", time.Now()).Msg("Now cleaning up entire database...")

	if count, err := PurgeExpiredRefreshTokens(); err != nil {
		log.Error().Err(err).Msg("An error occurred when purging refresh tokens...")
	} else {
		log.Debug().Int64("count", count).Msg("Purged expired refresh tokens.")
	}

	retention := viper.GetDuration("security.activity_retention")
	if retention <= 0 {
		retention = defaultActivityRetention
	}
	result := database.C.Where("created_at < ?", time.Now().Add(-retention)).Delete(&models.UserActivity{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("An error occurred when purging user activities...")
	} else {
		log.Debug().Int64("count", result.RowsAffected).Msg("Purged old user activities.")
	}

	log.Debug().Msg("Clean up entire database accomplished.")
}
