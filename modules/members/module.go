package members

import (
	"embed"
	"io/fs"

	"github.com/iota-uz/iota-crud/modules/members/infrastructure/persistence"
	"github.com/iota-uz/iota-crud/modules/members/presentation"
	"github.com/iota-uz/iota-crud/modules/members/services"
	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/authz"
	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/crudpage"
)

//go:embed presentation/locales/*.json presentation/locales/*.toml
var localeFiles embed.FS

//go:embed infrastructure/persistence/schema
var migrationFiles embed.FS

const DefaultBasePath = "/members"

type ModuleOptions struct {
	BasePath   string
	ProfileURL string
	Authz      *authz.Service
	Flash      crud.FlashTransport
	Tokens     *crud.Tokens
	PerPage    int
	MaxPerPage int
}

func NewModule(opts ModuleOptions) application.Module {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	return &Module{opts: opts}
}

type Module struct {
	opts ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	if err := app.RegisterLocaleFiles(localeFiles); err != nil {
		return err
	}

	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema/"+schemaDialect(app))
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	publisher := app.EventPublisher()
	services.SubscribeAuditLog(publisher)
	memberService := services.NewMemberService(persistence.NewMemberRepository(), publisher)
	app.RegisterServices(memberService)

	page := presentation.NewPage(presentation.PageOptions{
		Service:    memberService,
		Authz:      m.opts.Authz,
		ProfileURL: m.opts.ProfileURL,
		Flash:      m.opts.Flash,
		Tokens:     m.opts.Tokens,
		PerPage:    m.opts.PerPage,
		MaxPerPage: m.opts.MaxPerPage,
	})
	_, err = crudpage.Register(app.Pages(), page, m.opts.BasePath)
	return err
}

func (m *Module) Name() string {
	return "members"
}

func schemaDialect(app application.Application) string {
	if db := app.DB(); db != nil {
		switch db.DriverName() {
		case "pgx", "postgres":
			return "postgres"
		}
	}
	return "sqlite"
}
