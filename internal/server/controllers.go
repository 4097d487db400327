package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-crud/internal/assets"
	"github.com/iota-uz/iota-crud/pkg/application"
	"github.com/iota-uz/iota-crud/pkg/httpapi"
	"github.com/iota-uz/iota-crud/pkg/intl"
	"github.com/iota-uz/iota-crud/pkg/middleware"
)

// StaticFilesController serves hashed assets under /assets, looking the name
// up in each file system in turn.
type StaticFilesController struct {
	fsInstances []*hashfs.FS
	// Disables caching for assets edited during development.
	noCache bool
}

func NewStaticFilesController(fsInstances []*hashfs.FS, noCache bool) application.Controller {
	return &StaticFilesController{fsInstances: fsInstances, noCache: noCache}
}

func (s *StaticFilesController) Key() string {
	return "/assets"
}

func (s *StaticFilesController) Register(r *mux.Router) {
	servers := make([]http.Handler, len(s.fsInstances))
	for i, fsys := range s.fsInstances {
		servers[i] = hashfs.FileServer(fsys)
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		for i, fsys := range s.fsInstances {
			f, err := fsys.Open(name)
			if err != nil {
				continue
			}
			_ = f.Close()
			if s.noCache {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			}
			servers[i].ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets", handler))
}

func notFoundPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="crud-no-permission"><h2>`+
			templ.EscapeString(intl.Localize(ctx, "Errors.NotFound", "Page not found"))+
			`</h2></div>`)
		return err
	})
}

func NotFound(app application.Application) http.HandlerFunc {
	page := templ.Handler(
		assets.Layout("Not found", nil, notFoundPage()),
		templ.WithStatus(http.StatusNotFound),
	)
	localized := middleware.ProvideLocalizer(app)(page)
	return func(w http.ResponseWriter, r *http.Request) {
		if httpapi.WantsJSON(r) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", map[string]string{
				"path": r.URL.Path,
			})
			return
		}
		localized.ServeHTTP(w, r)
	}
}

func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpapi.WantsJSON(r) {
			_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
