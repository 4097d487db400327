package application

import (
	"context"
	"io/fs"

	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/jmoiron/sqlx"

	"github.com/iota-uz/iota-crud/pkg/contentpage"
	"github.com/iota-uz/iota-crud/pkg/eventbus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Register(app Application) error
	Name() string
}

// MigrationManager applies the embedded schemas registered by modules.
type MigrationManager interface {
	RegisterSchema(name string, fsys fs.FS)
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Status(ctx context.Context) ([]MigrationStatus, error)
}

// Application holds what modules register at startup: controllers, pages,
// migrations, locales, assets and services.
type Application interface {
	DB() *sqlx.DB
	EventPublisher() eventbus.EventBus
	Bundle() *i18n.Bundle
	Pages() *contentpage.Registry
	Migrations() MigrationManager
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	HashFsAssets() []*hashfs.FS
	GetSupportedLanguages() []string
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterHashFsAssets(fs ...*hashfs.FS)
	RegisterLocaleFiles(fsys fs.FS) error
	RegisterServices(services ...any)
}
