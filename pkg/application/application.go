package application

import (
	"encoding/json"
	"io/fs"
	"path"
	"reflect"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/benbjohnson/hashfs"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/iota-uz/iota-crud/pkg/contentpage"
	"github.com/iota-uz/iota-crud/pkg/eventbus"
)

var defaultLanguages = []string{"en", "ru"}

type ApplicationOptions struct {
	DB       *sqlx.DB
	EventBus eventbus.EventBus
	Bundle   *i18n.Bundle
	Pages    *contentpage.Registry
	// Defaults to en and ru.
	SupportedLanguages []string
}

// LoadBundle returns an English fallback bundle that reads json and toml message files.
func LoadBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return bundle
}

func New(opts *ApplicationOptions) Application {
	app := &application{
		db:          opts.DB,
		bus:         opts.EventBus,
		bundle:      opts.Bundle,
		pages:       opts.Pages,
		languages:   opts.SupportedLanguages,
		controllers: make(map[string]Controller),
		services:    make(map[reflect.Type]any),
		migrations:  NewMigrationManager(opts.DB),
	}
	if app.bus == nil {
		app.bus = eventbus.NewEventPublisher(logrus.StandardLogger())
	}
	if app.bundle == nil {
		app.bundle = LoadBundle()
	}
	if app.pages == nil {
		app.pages = contentpage.NewRegistry()
	}
	if len(app.languages) == 0 {
		app.languages = defaultLanguages
	}
	return app
}

type application struct {
	db          *sqlx.DB
	bus         eventbus.EventBus
	bundle      *i18n.Bundle
	pages       *contentpage.Registry
	languages   []string
	controllers map[string]Controller
	services    map[reflect.Type]any
	middleware  []mux.MiddlewareFunc
	assets      []*hashfs.FS
	migrations  MigrationManager
}

func (app *application) DB() *sqlx.DB                      { return app.db }
func (app *application) EventPublisher() eventbus.EventBus { return app.bus }
func (app *application) Bundle() *i18n.Bundle              { return app.bundle }
func (app *application) Pages() *contentpage.Registry      { return app.pages }
func (app *application) Migrations() MigrationManager      { return app.migrations }
func (app *application) Middleware() []mux.MiddlewareFunc  { return app.middleware }
func (app *application) HashFsAssets() []*hashfs.FS        { return app.assets }
func (app *application) GetSupportedLanguages() []string   { return app.languages }

// Controllers returns the registered controllers ordered by key, so routes
// are added in the same order on every start.
func (app *application) Controllers() []Controller {
	keys := make([]string, 0, len(app.controllers))
	for k := range app.controllers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Controller, len(keys))
	for i, k := range keys {
		out[i] = app.controllers[k]
	}
	return out
}

// RegisterControllers replaces any controller with the same key.
func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

func (app *application) RegisterHashFsAssets(fs ...*hashfs.FS) {
	app.assets = append(app.assets, fs...)
}

// RegisterLocaleFiles parses every message file in fsys into the bundle. The
// language comes from the file name, e.g. ru.toml.
func (app *application) RegisterLocaleFiles(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "read locale %s", p)
		}
		if _, err := app.bundle.ParseMessageFileBytes(data, path.Base(p)); err != nil {
			return errors.Wrapf(err, "parse locale %s", p)
		}
		return nil
	})
}

// RegisterServices stores each service under its pointer type.
func (app *application) RegisterServices(services ...any) {
	for _, s := range services {
		app.services[reflect.TypeOf(s)] = s
	}
}

func (app *application) lookup(t reflect.Type) (any, bool) {
	s, ok := app.services[t]
	return s, ok
}

// Service returns the service registered under T.
//
//	svc, ok := application.Service[*services.MemberService](app)
func Service[T any](app Application) (T, bool) {
	var zero T
	a, ok := app.(*application)
	if !ok {
		return zero, false
	}
	s, ok := a.lookup(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return s.(T), true
}
