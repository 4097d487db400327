package crud

import "embed"

// LocaleFiles holds the engine's message translations.
//
//go:embed locales/*.json
var LocaleFiles embed.FS
