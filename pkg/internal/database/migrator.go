package database

import (
	"fmt"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.User{},
	&models.Category{},
	&models.Tag{},
	&models.Post{},
	&models.Comment{},
	&models.Banner{},
	&models.Upload{},
	&models.RefreshToken{},
	&models.UserActivity{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	if IsPostgres(source) {
		return runPostgresIndexes(source)
	}

	return nil
}

func runPostgresIndexes(source *gorm.DB) error {
	posts := source.NamingStrategy.TableName("Post")
	users := source.NamingStrategy.TableName("User")

	statements := []string{
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_search ON %s USING GIN ("+
				"(setweight(to_tsvector('simple', coalesce(title, '')), 'A') || "+
				"setweight(to_tsvector('simple', coalesce(excerpt, '')), 'B') || "+
				"setweight(to_tsvector('simple', coalesce(content, '')), 'C')))",
			posts, posts,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_related_products ON %s USING GIN (related_products jsonb_path_ops)",
			posts, posts,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_search ON %s USING GIN ("+
				"to_tsvector('simple', coalesce(first_name, '') || ' ' || coalesce(last_name, '') || ' ' || coalesce(username, '')))",
			users, users,
		),
	}

	for _, statement := range statements {
		if err := source.Exec(statement).Error; err != nil {
			return fmt.Errorf("unable to create index: %v", err)
		}
	}

	return nil
}
