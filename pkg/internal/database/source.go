package database

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var C *gorm.DB

const sqlitePrefix = "sqlite://"

func NewGorm() error {
	var err error
	C, err = Open(viper.GetString("database.dsn"))
	return err
}

// Open connects to postgres, or to sqlite when the dsn starts with sqlite://.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	isSqlite := strings.HasPrefix(dsn, sqlitePrefix)
	if isSqlite {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: viper.GetString("database.prefix"),
		},
		Logger: logger.New(&log.Logger, logger.Config{
			Colorful:                  true,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  lo.Ternary(viper.GetBool("debug.database"), logger.Info, logger.Silent),
		}),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	if isSqlite {
		// sqlite serializes writers anyway, a single connection avoids table locks
		if raw, err := db.DB(); err == nil {
			raw.SetMaxOpenConns(1)
		}
	}

	return db, nil
}

func IsPostgres(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "postgres"
}
