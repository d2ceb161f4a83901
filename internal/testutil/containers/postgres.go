//go:build integration

package containers

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
)

// PostgresContainer wraps a migrated testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *gorm.DB
}

// NewPostgresContainer starts Postgres and applies the service migrations.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("referral"),
		tcpostgres.WithUsername("referral"),
		tcpostgres.WithPassword("referral"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open gorm: %v", err)
	}

	if err := migrate.RunMigrations(db, MigrationsPath(), zap.NewNop()); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// Truncate empties every referral table. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	return p.DB.WithContext(ctx).Exec(`TRUNCATE sponsor_links, affiliate_profiles, commissions,
		balances, transaction_history, referral_event_log RESTART IDENTITY`).Error
}

func (p *PostgresContainer) Terminate(ctx context.Context) error {
	if sqlDB, err := p.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return p.Container.Terminate(ctx)
}

// MigrationsPath is the absolute path of the repository's migrations directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
