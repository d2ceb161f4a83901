package postgres

import (
	"log"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
)

// MustInitDB opens the referral database and applies pending migrations.
func MustInitDB(cfg *config.ReferralConfig, logger *zap.Logger) *gorm.DB {
	dsn := cfg.ReferralDB.Dsn
	if dsn == "" {
		log.Fatalf("referral_db.dsn is empty\n")
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.Env == "local" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := migrate.RunMigrations(db, cfg.ReferralDB.MigrationsPath, logger); err != nil {
		log.Fatalf("failed to apply migrations: %v\n", err)
	}

	return db
}
