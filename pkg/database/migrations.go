package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"routing/pkg/config"
	"routing/pkg/logger"
)

// MigrationState состояние одной миграции
type MigrationState struct {
	Version int64
	Path    string
	Applied bool
}

// Migrator применяет SQL миграции через goose.Provider
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
}

// NewMigrator создаёт мигратор для каталога dir внутри migrations
func NewMigrator(pool *pgxpool.Pool, migrations fs.FS, dir string) (*Migrator, error) {
	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	return &Migrator{pool: pool, fsys: sub}, nil
}

func (m *Migrator) provider() (*goose.Provider, *sql.DB, error) {
	db := stdlib.OpenDBFromPool(m.pool)
	p, err := goose.NewProvider(goose.DialectPostgres, db, m.fsys)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, db, nil
}

// Up применяет все ожидающие миграции и возвращает их число
func (m *Migrator) Up(ctx context.Context) (int, error) {
	p, db, err := m.provider()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Log.Info("Migration applied",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return len(results), nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	p, db, err := m.provider()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	logger.Log.Info("Migration rolled back", "version", result.Source.Version)
	return nil
}

// Status возвращает состояние всех известных миграций
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	p, db, err := m.provider()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// RunMigrations применяет миграции если включён auto_migrate
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.DatabaseConfig, migrations fs.FS, dir string) error {
	if !cfg.AutoMigrate {
		logger.Log.Info("Auto-migration is disabled")
		return nil
	}

	migrator, err := NewMigrator(pool, migrations, dir)
	if err != nil {
		return err
	}
	applied, err := migrator.Up(ctx)
	if err != nil {
		return err
	}
	logger.Log.Info("Migrations applied successfully", "count", applied)
	return nil
}
