package authz

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/pkg/configuration"
)

type Config struct {
	ModelPath  string
	PolicyPath string
	// YAML flag file. When empty, Mode applies to every object.
	FlagPath string
	Mode     Mode
	Logger   *logrus.Logger
	// Overrides FlagPath and Mode.
	Flags FlagProvider
}

func (c Config) provider() FlagProvider {
	switch {
	case c.Flags != nil:
		return c.Flags
	case c.FlagPath != "":
		return NewFileFlagProvider(filepath.Clean(c.FlagPath), c.Mode)
	default:
		return StaticMode(c.Mode)
	}
}

func (c Config) entry() *logrus.Entry {
	logger := c.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", "authz")
}

// ConfigFrom reads the AUTHZ_* settings.
func ConfigFrom(conf *configuration.Configuration) Config {
	return Config{
		ModelPath:  conf.Authz.ModelPath,
		PolicyPath: conf.Authz.PolicyPath,
		FlagPath:   conf.Authz.FlagConfigPath,
		Mode:       ParseMode(conf.Authz.Mode),
		Logger:     conf.Logger(),
	}
}
