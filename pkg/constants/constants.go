package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	UserIDKey    ContextKey = "userID"
	AppKey       ContextKey = "app"
	LocalizerKey ContextKey = "localizer"
	LocaleKey    ContextKey = "locale"
	DBKey        ContextKey = "db"
	TxKey        ContextKey = "tx"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())
