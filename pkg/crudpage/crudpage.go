// Package crudpage hosts crud pages in a content page registry.
package crudpage

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/iota-uz/iota-crud/pkg/contentpage"
	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/crud/views"
)

// Register adds p to reg and returns the content page serving it. When path is
// not empty the page is assigned to it; the crud page's base URL follows the
// registry either way.
func Register[T any](reg *contentpage.Registry, p *crud.Page[T], path string) (*contentpage.Page, error) {
	cp := &contentpage.Page{
		ID:          p.ID(),
		Label:       p.Label(),
		Description: p.Description(),
		Permission:  p.CanView,
		Screen: func(w http.ResponseWriter, r *http.Request) (any, bool) {
			s := p.Screen(w, r)
			return s, s.Redirected()
		},
		Display: func(_ *http.Request, state any) templ.Component {
			s, ok := state.(*crud.State[T])
			if !ok {
				return templ.NopComponent
			}
			return views.Page(s)
		},
		Data: func(_ *http.Request, state any) map[string]any {
			s, ok := state.(*crud.State[T])
			if !ok {
				return nil
			}
			data := map[string]any{"title": p.Label()}
			for k, v := range s.Data() {
				data[k] = v
			}
			return data
		},
		NoPermission: views.NoPermission,
	}
	if err := reg.Register(cp); err != nil {
		return nil, err
	}
	if path != "" {
		if err := reg.Assign(cp.ID, path); err != nil {
			return nil, err
		}
	}
	p.SetURL(reg.URL(cp))
	return cp, nil
}
