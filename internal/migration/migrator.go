package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/database"
)

//go:embed sql/*.sql
var migrations embed.FS

const migrationsDir = "sql"

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// goose keeps dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Migrator wraps goose operations over the embedded migrations.
type Migrator struct {
	db      *bun.DB
	dialect string
	logger  *zap.Logger
}

// New constructs a goose-backed migrator for the writer connection.
func New(conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	if !conns.Enabled() {
		return nil, fmt.Errorf("migrations need sql storage: %w", database.ErrDisabled)
	}
	return NewForDB(conns.Writer, conns.Driver, logger)
}

// NewForDB builds a migrator for an already opened handle.
func NewForDB(db *bun.DB, driver string, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, dialect: dialect, logger: logger}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	err := m.run(func() error {
		return goose.UpContext(ctx, m.db.DB, migrationsDir)
	})
	if err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")
			return nil
		}
		return err
	}

	m.logger.Info("migrations applied")
	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if steps <= 0 {
		steps = 1
	}

	err := m.run(func() error {
		if all {
			return goose.DownToContext(ctx, m.db.DB, migrationsDir, 0)
		}
		for i := 0; i < steps; i++ {
			if err := goose.DownContext(ctx, m.db.DB, migrationsDir); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to rollback")
			return nil
		}
		return err
	}

	if all {
		m.logger.Info("migrations rolled back", zap.String("mode", "all"))
	} else {
		m.logger.Info("migrations rolled back", zap.Int("steps", steps))
	}
	return nil
}

func (m *Migrator) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return fn()
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	return strings.Contains(err.Error(), "no migrations")
}
