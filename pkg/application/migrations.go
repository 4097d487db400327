package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

var ErrNoDatabase = errors.New("migrations: no database configured")

type MigrationStatus struct {
	Schema    string
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

type schema struct {
	name string
	fsys fs.FS
}

// NewMigrationManager runs goose migrations, one version table per registered schema.
func NewMigrationManager(db *sqlx.DB) MigrationManager {
	return &migrationManager{db: db}
}

type migrationManager struct {
	db      *sqlx.DB
	schemas []schema
}

func (m *migrationManager) RegisterSchema(name string, fsys fs.FS) {
	m.schemas = append(m.schemas, schema{name: name, fsys: fsys})
}

func (m *migrationManager) provider(s schema) (*goose.Provider, error) {
	if m.db == nil {
		return nil, ErrNoDatabase
	}
	dialect, err := gooseDialect(m.db.DriverName())
	if err != nil {
		return nil, err
	}
	store, err := database.NewStore(dialect, "goose_"+s.name+"_version")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", m.db.DB, s.fsys, goose.WithStore(store))
}

func (m *migrationManager) Up(ctx context.Context) error {
	for _, s := range m.schemas {
		p, err := m.provider(s)
		if err != nil {
			return err
		}
		if _, err := p.Up(ctx); err != nil {
			return fmt.Errorf("migrate %s up: %w", s.name, err)
		}
	}
	return nil
}

// Down rolls back the latest migration of every schema, last registered first.
func (m *migrationManager) Down(ctx context.Context) error {
	for i := len(m.schemas) - 1; i >= 0; i-- {
		s := m.schemas[i]
		p, err := m.provider(s)
		if err != nil {
			return err
		}
		if _, err := p.Down(ctx); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
			return fmt.Errorf("migrate %s down: %w", s.name, err)
		}
	}
	return nil
}

func (m *migrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	var out []MigrationStatus
	for _, s := range m.schemas {
		p, err := m.provider(s)
		if err != nil {
			return nil, err
		}
		statuses, err := p.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrate %s status: %w", s.name, err)
		}
		for _, st := range statuses {
			out = append(out, MigrationStatus{
				Schema:    s.name,
				Version:   st.Source.Version,
				Path:      st.Source.Path,
				Applied:   st.State == goose.StateApplied,
				AppliedAt: st.AppliedAt,
			})
		}
	}
	return out, nil
}

func gooseDialect(driver string) (database.Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return database.DialectPostgres, nil
	case "sqlite", "sqlite3":
		return database.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}
