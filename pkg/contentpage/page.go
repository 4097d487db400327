package contentpage

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// ScreenFunc runs before anything is written to the response. It returns the state
// handed to Display and Data, and done once it has written the response itself.
type ScreenFunc func(w http.ResponseWriter, r *http.Request) (state any, done bool)

type DisplayFunc func(r *http.Request, state any) templ.Component

type DataFunc func(r *http.Request, state any) map[string]any

type PermissionFunc func(ctx context.Context) bool

// Page is a screen hosted at a URL assigned through the Registry.
type Page struct {
	ID          string
	Label       string
	Description string

	Permission   PermissionFunc
	Screen       ScreenFunc
	Display      DisplayFunc
	Data         DataFunc
	NoPermission func() templ.Component

	// resolved by Registry.URL
	url    string
	cached bool
}

// CanView reports whether the current request may see the page. Pages without a
// permission callback are public.
func (p *Page) CanView(ctx context.Context) bool {
	if p.Permission == nil {
		return true
	}
	return p.Permission(ctx)
}
