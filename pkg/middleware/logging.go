package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/httpapi"
)

var tracer = otel.Tracer("iota-crud/middleware")

type LoggerOptions struct {
	// Incoming request id; a uuid is generated when the header is absent.
	RequestIDHeader string
	// Client address set by the proxy; RemoteAddr otherwise.
	RealIPHeader string

	// Log urlencoded POST bodies, which carry the crud form fields.
	LogFormBody  bool
	MaxValueLen  int
	RedactFields []string
	Repanic      bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
		LogFormBody:     true,
		MaxValueLen:     512,
		RedactFields:    []string{"token", "password"},
	}
}

func (o LoggerOptions) requestID(r *http.Request) string {
	if id := r.Header.Get(o.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func realIP(r *http.Request, header string) string {
	if ip := r.Header.Get(header); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// statusRecorder remembers the first status written.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot hijack")
	}
	return h.Hijack()
}

// Traced opens a child span named middleware.<name> around next.
func Traced(name string, mw mux.MiddlewareFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		inner := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "middleware."+name,
				trace.WithAttributes(attribute.String("middleware.name", name)))
			defer span.End()
			inner.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func formatFormValues(f url.Values, redact []string, maxLen int) map[string]string {
	out := make(map[string]string, len(f))
	for key, values := range f {
		v := strings.Join(values, ",")
		if isRedacted(key, redact) {
			v = "[redacted]"
		} else if maxLen > 0 && len(v) > maxLen {
			v = v[:maxLen]
		}
		out[key] = v
	}
	return out
}

func isRedacted(key string, redact []string) bool {
	for _, field := range redact {
		if strings.EqualFold(field, key) {
			return true
		}
	}
	return false
}

// peekForm reads an urlencoded body and puts it back for the handler.
func peekForm(r *http.Request) (url.Values, error) {
	if r.Method != http.MethodPost || r.Body == nil ||
		!strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return url.ParseQuery(string(body))
}

// WithLogger gives every request a logrus entry tagged with its request id,
// opens the http.request span and answers handler panics with a 500.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	propagator := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := opts.requestID(r)
			ip := realIP(r, opts.RealIPHeader)

			ctx, span := tracer.Start(
				propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header)),
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.request_id", id),
					attribute.String("net.peer.ip", ip),
				),
			)
			defer span.End()

			entry := logger.WithFields(logrus.Fields{
				"request-id": id,
				"method":     r.Method,
				"path":       r.URL.RequestURI(),
			})
			if sc := span.SpanContext(); sc.HasTraceID() {
				entry = entry.WithField("trace-id", sc.TraceID().String())
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
			}
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			w.Header().Set("X-Request-Id", id)

			entry.WithFields(logrus.Fields{"ip": ip, "user-agent": r.UserAgent()}).Info("request started")
			if opts.LogFormBody {
				form, err := peekForm(r)
				if err != nil {
					entry.WithError(err).Error("failed to read request body")
					http.Error(w, "failed to read request body", http.StatusBadRequest)
					return
				}
				if len(form) > 0 {
					entry.WithField("form", formatFormValues(form, opts.RedactFields, opts.MaxValueLen)).Info("form submitted")
				}
			}

			ctx = composables.WithLogger(ctx, entry)
			rec := &statusRecorder{ResponseWriter: w}
			defer recoverRequest(rec, r, entry, start, opts.Repanic)

			next.ServeHTTP(rec, r.WithContext(ctx))

			took := time.Since(start)
			entry.WithFields(logrus.Fields{
				"status":   rec.code(),
				"duration": took,
			}).Info("request completed")
			span.SetAttributes(
				attribute.Int("http.status_code", rec.code()),
				attribute.Int64("http.duration_ms", took.Milliseconds()),
			)
		})
	}
}

func recoverRequest(rec *statusRecorder, r *http.Request, entry *logrus.Entry, start time.Time, repanic bool) {
	recovered := recover()
	if recovered == nil {
		return
	}
	entry.WithFields(logrus.Fields{
		"panic":    recovered,
		"stack":    string(debug.Stack()),
		"duration": time.Since(start),
	}).Error("handler panicked")

	if rec.status == 0 {
		if httpapi.WantsJSON(r) {
			_ = httpapi.WriteError(rec, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
		} else {
			http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	if repanic {
		panic(recovered)
	}
}
