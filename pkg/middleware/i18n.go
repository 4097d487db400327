package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/iota-uz/iota-crud/pkg/intl"
)

// LocaleCookie keeps a ?lang= choice across the redirect that ends a CRUD action.
const LocaleCookie = "crud-lang"

type Application interface {
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
}

type localeResolver struct {
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
}

func newLocaleResolver(fallback language.Tag, codes []string) *localeResolver {
	langs := intl.Languages(codes...)
	lr := &localeResolver{fallback: fallback, supported: make([]language.Tag, 0, len(langs))}
	for _, l := range langs {
		lr.supported = append(lr.supported, l.Tag)
	}
	if len(lr.supported) > 0 {
		lr.matcher = language.NewMatcher(lr.supported)
	}
	return lr
}

// pick returns the supported tag closest to candidates, or the fallback when none is close.
func (lr *localeResolver) pick(candidates ...language.Tag) language.Tag {
	if lr.matcher == nil || len(candidates) == 0 {
		return lr.fallback
	}
	_, idx, confidence := lr.matcher.Match(candidates...)
	if confidence == language.No {
		return lr.fallback
	}
	return lr.supported[idx]
}

// resolve looks at ?lang=, then the locale cookie, then Accept-Language.
// chosen is true when the locale came from the query string.
func (lr *localeResolver) resolve(r *http.Request) (tag language.Tag, chosen bool) {
	if t, ok := parseTag(r.URL.Query().Get("lang")); ok {
		return lr.pick(t), true
	}
	if c, err := r.Cookie(LocaleCookie); err == nil {
		if t, ok := parseTag(c.Value); ok {
			return lr.pick(t), false
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return lr.fallback, false
	}
	return lr.pick(tags...), false
}

func parseTag(s string) (language.Tag, bool) {
	if s == "" {
		return language.Und, false
	}
	tag, err := language.Parse(s)
	return tag, err == nil
}

// ProvideLocalizer puts a localizer for the request locale into the context.
func ProvideLocalizer(app Application) mux.MiddlewareFunc {
	bundle := app.Bundle()
	resolver := newLocaleResolver(language.English, app.GetSupportedLanguages())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale, chosen := resolver.resolve(r)
			if chosen {
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookie,
					Value:    locale.String(),
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := intl.WithLocalizer(r.Context(), i18n.NewLocalizer(bundle, locale.String()))
			next.ServeHTTP(w, r.WithContext(intl.WithLocale(ctx, locale)))
		})
	}
}
