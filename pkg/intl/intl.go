package intl

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/iota-uz/iota-crud/pkg/constants"
)

// Language is a UI language the bundles carry translations for.
type Language struct {
	Code string
	Name string
	Tag  language.Tag
}

var languages = []Language{
	{Code: "en", Name: "English", Tag: language.English},
	{Code: "ru", Name: "Русский", Tag: language.Russian},
}

// Languages returns the known languages listed in codes, in table order.
// No codes means all of them.
func Languages(codes ...string) []Language {
	if len(codes) == 0 {
		return languages
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		wanted[c] = struct{}{}
	}
	out := make([]Language, 0, len(codes))
	for _, l := range languages {
		if _, ok := wanted[l.Code]; ok {
			out = append(out, l)
		}
	}
	return out
}

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, constants.LocalizerKey, l)
}

func UseLocalizer(ctx context.Context) (*i18n.Localizer, bool) {
	l, _ := ctx.Value(constants.LocalizerKey).(*i18n.Localizer)
	return l, l != nil
}

func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, constants.LocaleKey, tag)
}

func UseLocale(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(constants.LocaleKey).(language.Tag)
	return tag, ok
}

// Localize translates messageID for the request, or returns fallback when the
// context has no localizer or the bundle has no such message.
func Localize(ctx context.Context, messageID, fallback string) string {
	l, ok := UseLocalizer(ctx)
	if !ok {
		return fallback
	}
	msg, _ := l.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID, Other: fallback},
	})
	if msg == "" {
		return fallback
	}
	return msg
}
