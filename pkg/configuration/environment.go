package configuration

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/pkg/logging"
)

const Production = "production"

var envFiles = []string{".env", ".env.local"}

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load(); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// Use returns the process configuration, loading it on first call. Invalid
// settings panic.
func Use() *Configuration {
	return singleton()
}

type DatabaseOptions struct {
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN      string `env:"DB_DSN"`
	Name     string `env:"DB_NAME" envDefault:"iota_crud"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Path     string `env:"DB_PATH" envDefault:"./data/crud.db"`

	MigrationsEnabled bool `env:"MIGRATIONS_ENABLED" envDefault:"true"`
}

// ConnectionString returns DB_DSN when set, else a DSN built for the driver.
func (d *DatabaseOptions) ConnectionString() string {
	switch {
	case d.DSN != "":
		return d.DSN
	case d.Driver == "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Name, d.Password)
	default:
		return "file:" + d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
}

func (d *DatabaseOptions) Validate() error {
	if d.Driver != "sqlite" && d.Driver != "postgres" {
		return errors.Errorf("DB_DRIVER must be sqlite or postgres, got %q", d.Driver)
	}
	return nil
}

type LogOptions struct {
	// silent, error, warn, info or debug.
	Level string `env:"LOG_LEVEL" envDefault:"error"`
	Path  string `env:"LOG_PATH" envDefault:"./logs/app.log"`
}

// LogrusLevel maps Level onto logrus; unknown names mean error.
func (l LogOptions) LogrusLevel() logrus.Level {
	if strings.EqualFold(l.Level, "silent") {
		return logrus.PanicLevel
	}
	switch lvl, err := logrus.ParseLevel(l.Level); {
	case err != nil, lvl < logrus.ErrorLevel, lvl > logrus.DebugLevel:
		return logrus.ErrorLevel
	default:
		return lvl
	}
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"iota-crud"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

const maxGlobalRPS = 1_000_000

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"`
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

func (r *RateLimitOptions) Validate() error {
	switch {
	case r.GlobalRPS < 0 || r.GlobalRPS > maxGlobalRPS:
		return errors.Errorf("RATE_LIMIT_GLOBAL_RPS must be within 0..%d, got %d", maxGlobalRPS, r.GlobalRPS)
	case r.Storage != "memory" && r.Storage != "redis":
		return errors.Errorf("RATE_LIMIT_STORAGE must be memory or redis, got %q", r.Storage)
	case r.Storage == "redis" && r.RedisURL == "":
		return errors.New("RATE_LIMIT_REDIS_URL is required with redis storage")
	}
	return nil
}

type AuthzOptions struct {
	ModelPath      string `env:"AUTHZ_MODEL_PATH" envDefault:"config/access/model.conf"`
	PolicyPath     string `env:"AUTHZ_POLICY_PATH" envDefault:"config/access/policy.csv"`
	FlagConfigPath string `env:"AUTHZ_FLAG_CONFIG" envDefault:"config/access/authz_flags.yaml"`
	Mode           string `env:"AUTHZ_MODE" envDefault:"disabled"`
}

type CrudOptions struct {
	PageSize    int           `env:"PAGE_SIZE" envDefault:"50"`
	MaxPageSize int           `env:"MAX_PAGE_SIZE" envDefault:"500"`
	TokenSecret string        `env:"CRUD_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"CRUD_TOKEN_TTL" envDefault:"12h"`
	// cookie or redis.
	FlashStore string        `env:"FLASH_STORE" envDefault:"cookie"`
	FlashTTL   time.Duration `env:"FLASH_TTL" envDefault:"24h"`
}

func (c *CrudOptions) Validate() error {
	switch {
	case c.PageSize < 1:
		return errors.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.MaxPageSize < c.PageSize:
		return errors.Errorf("MAX_PAGE_SIZE (%d) is below PAGE_SIZE (%d)", c.MaxPageSize, c.PageSize)
	case c.FlashStore != "cookie" && c.FlashStore != "redis":
		return errors.Errorf("FLASH_STORE must be cookie or redis, got %q", c.FlashStore)
	}
	return nil
}

type MembersOptions struct {
	BasePath   string `env:"MEMBERS_BASE_PATH" envDefault:"/members"`
	ProfileURL string `env:"MEMBERS_PROFILE_URL"`
}

type Configuration struct {
	Database      DatabaseOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	Authz         AuthzOptions
	Crud          CrudOptions
	Members       MembersOptions

	RedisURL         string `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	Domain           string `env:"DOMAIN" envDefault:"localhost"`
	Origin           string `env:"ORIGIN"`
	CorsOrigins      string `env:"CORS_ORIGINS"`
	RequestIDHeader  string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader     string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	// Set by the authenticating reverse proxy in front of the app.
	UserHeader string `env:"USER_HEADER" envDefault:"X-Forwarded-User"`

	SocketAddress string `env:"-"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) IsProduction() bool {
	return c.GoAppEnvironment == Production
}

// CorsOriginList splits CORS_ORIGINS on commas and whitespace.
func (c *Configuration) CorsOriginList() []string {
	return strings.FieldsFunc(c.CorsOrigins, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

// resolveAddresses fills SocketAddress and, unless ORIGIN is set, Origin.
// Production listens on every interface behind https.
func (c *Configuration) resolveAddresses() {
	if c.IsProduction() {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	if c.Origin != "" {
		return
	}
	switch {
	case c.IsProduction():
		c.Origin = "https://" + c.Domain
	case c.GoAppEnvironment == "development":
		c.Origin = fmt.Sprintf("http://%s:%d", c.Domain, c.ServerPort)
	default:
		c.Origin = "http://" + c.Domain
	}
}

func (c *Configuration) load() error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return errors.Wrap(err, "load env files")
	}
	if n == 0 {
		log.Printf("no env files found (%s), using process environment", strings.Join(envFiles, ", "))
	}
	if err := env.Parse(c); err != nil {
		return errors.Wrap(err, "parse environment")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	c.logFile, c.logger, err = logging.FileLogger(c.Log.LogrusLevel(), c.Log.Path)
	if err != nil {
		return err
	}
	c.resolveAddresses()
	return nil
}

// Validate reports every invalid setting at once.
func (c *Configuration) Validate() error {
	var errs []error
	for _, v := range []interface{ Validate() error }{&c.Database, &c.RateLimit, &c.Crud} {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.IsProduction() && strings.TrimSpace(c.Crud.TokenSecret) == "" {
		errs = append(errs, errors.New("CRUD_TOKEN_SECRET is required in production"))
	}
	return stderrors.Join(errs...)
}

// Unload closes the log file.
func (c *Configuration) Unload() {
	if c.logFile == nil {
		return
	}
	if err := c.logFile.Close(); err != nil {
		log.Printf("close log file: %v", err)
	}
}
