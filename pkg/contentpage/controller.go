package contentpage

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/httpapi"
)

// LayoutFunc wraps page content into a full document.
type LayoutFunc func(title string, data map[string]any, body templ.Component) templ.Component

type ControllerOption func(c *Controller)

func WithLayout(layout LayoutFunc) ControllerOption {
	return func(c *Controller) { c.layout = layout }
}

// WithIndexPath moves the JSON page index, "" disables it.
func WithIndexPath(path string) ControllerOption {
	return func(c *Controller) { c.indexPath = path }
}

type Controller struct {
	registry  *Registry
	layout    LayoutFunc
	indexPath string
}

func NewController(registry *Registry, opts ...ControllerOption) *Controller {
	c := &Controller{
		registry:  registry,
		layout:    bare,
		indexPath: "/pages",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Key() string {
	return "contentpages"
}

// Register mounts every page that has an assigned path.
func (c *Controller) Register(r *mux.Router) {
	for _, p := range c.registry.Registered() {
		path := c.registry.URL(p)
		if path == "" {
			continue
		}
		r.HandleFunc(path, c.Serve(p)).Methods(http.MethodGet, http.MethodPost)
	}
	if c.indexPath != "" {
		r.HandleFunc(c.indexPath, c.Index).Methods(http.MethodGet)
	}
}

// Serve checks permission, runs the screen callback and, unless it already
// responded, renders the display callback inside the layout.
func (c *Controller) Serve(p *Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := composables.UseLogger(r.Context()).WithField("content-page", p.ID)
		if !p.CanView(r.Context()) {
			logger.Debug("permission denied")
			body := templ.Component(templ.NopComponent)
			if p.NoPermission != nil {
				body = p.NoPermission()
			}
			templ.Handler(c.layout(p.Label, nil, body), templ.WithStatus(http.StatusForbidden)).ServeHTTP(w, r)
			return
		}

		var state any
		if p.Screen != nil {
			var done bool
			state, done = p.Screen(w, r)
			if done {
				return
			}
		}
		if p.Display == nil {
			return
		}
		var data map[string]any
		if p.Data != nil {
			data = p.Data(r, state)
		}
		title := p.Label
		if t, ok := data["title"].(string); ok && t != "" {
			title = t
		}
		templ.Handler(c.layout(title, data, p.Display(r, state)), templ.WithStreaming()).ServeHTTP(w, r)
	}
}

type pageDTO struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Index lists the pages visible to the caller, ranked by ?q= when given.
func (c *Controller) Index(w http.ResponseWriter, r *http.Request) {
	pages := c.registry.Search(r.Context(), r.URL.Query().Get("q"))
	out := make([]pageDTO, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageDTO{
			ID:          p.ID,
			Label:       p.Label,
			Description: p.Description,
			URL:         c.registry.URL(p),
		})
	}
	if err := httpapi.WriteJSON(w, http.StatusOK, out); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to encode page index")
	}
}

func bare(_ string, _ map[string]any, body templ.Component) templ.Component {
	return body
}
