package server

import (
	"context"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-crud/pkg/application"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// HTTPServer mounts the application controllers behind its middleware stack.
type HTTPServer struct {
	Controllers []application.Controller
	Middlewares []mux.MiddlewareFunc
	// Nil falls back to net/http defaults.
	NotFoundHandler         http.Handler
	MethodNotAllowedHandler http.Handler
}

func NewHTTPServer(app application.Application, notFound, methodNotAllowed http.Handler) *HTTPServer {
	return &HTTPServer{
		Controllers:             app.Controllers(),
		Middlewares:             app.Middleware(),
		NotFoundHandler:         notFound,
		MethodNotAllowedHandler: methodNotAllowed,
	}
}

// chain applies the middlewares around h with the first one outermost.
func (s *HTTPServer) chain(h http.Handler) http.Handler {
	for i := len(s.Middlewares) - 1; i >= 0; i-- {
		h = s.Middlewares[i](h)
	}
	return h
}

func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.Middlewares...)
	for _, c := range s.Controllers {
		c.Register(r)
	}

	notFound := s.NotFoundHandler
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	notAllowed := s.MethodNotAllowedHandler
	if notAllowed == nil {
		notAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
		})
	}
	// Unmatched requests skip r.Use, so the fallbacks get the chain themselves.
	r.NotFoundHandler = s.chain(notFound)
	r.MethodNotAllowedHandler = s.chain(notAllowed)
	return r
}

func (s *HTTPServer) Handler() http.Handler {
	return gziphandler.GzipHandler(s.Router())
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	served := make(chan error, 1)
	go func() { served <- srv.ListenAndServe() }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
