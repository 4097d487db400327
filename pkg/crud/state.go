package crud

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/pkg/composables"
)

// Query holds the routing parameters read from the URL.
type Query struct {
	Action   string `form:"action"`
	ID       string `form:"id"`
	ReturnTo string `form:"return_to"`
}

// Submission holds the routing parameters read from a POST body.
type Submission struct {
	Action       string `form:"action"`
	ID           string `form:"id"`
	Token        string `form:"token"`
	SubmitAction string `form:"submit_action"`
}

// View is the read side of a request state handed to renderers.
type View interface {
	PageID() string
	Label() string
	Action() Action
	BaseURL() string
	Flash() *Flash
	EditForm() *Form
	DeleteForm() *Form
	List() *List
	Pagination() Pagination
	PageActions() []PageAction
	Filters() *Filters
	FormURL(f *Form) string
	FormClass(f *Form) string
	FormToken(f *Form) string
	BeforeContent() []templ.Component
	ActionView() templ.Component
	Data() map[string]any
	Context() context.Context
}

type itemState int

const (
	itemUnloaded itemState = iota
	itemFound
	itemMissing
)

const (
	outcomeRendered  = "rendered"
	outcomeRedirect  = "redirect"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
	outcomeNoop      = "noop"
	outcomeForbidden = "forbidden"
	outcomeNotFound  = "not_found"
)

// State carries everything a single request learns about a page.
type State[T any] struct {
	page *Page[T]
	w    http.ResponseWriter
	r    *http.Request

	query      Query
	submission Submission

	action         Action
	actionResolved bool

	item      T
	itemState itemState

	editForm   *Form
	deleteForm *Form
	list       *List
	pagination Pagination

	flash      *Flash
	redirected bool
	location   string
	outcome    string
	data       map[string]any
}

// NewState decodes the routing parameters of r. Malformed values are treated as absent.
func (p *Page[T]) NewState(w http.ResponseWriter, r *http.Request) *State[T] {
	s := &State[T]{
		page:    p,
		w:       w,
		r:       r,
		outcome: outcomeRendered,
		data:    map[string]any{},
	}
	if _, err := composables.UseQuery(&s.query, r); err != nil {
		s.logger().WithError(err).Debug("ignoring malformed query")
	}
	if r.Method == http.MethodPost {
		if _, err := composables.UseForm(&s.submission, r); err != nil {
			s.logger().WithError(err).Debug("ignoring malformed body")
		}
	}
	page, size := ParsePagination(r.URL.Query(), p.perPage, p.maxPerPage)
	s.pagination = Pagination{
		Page:       page,
		PerPage:    size,
		MaxPerPage: p.maxPerPage,
		BaseURL:    p.url,
	}
	return s
}

func (s *State[T]) Request() *http.Request      { return s.r }
func (s *State[T]) Writer() http.ResponseWriter { return s.w }
func (s *State[T]) Context() context.Context    { return s.r.Context() }
func (s *State[T]) PageID() string              { return s.page.id }
func (s *State[T]) Label() string               { return s.page.label }
func (s *State[T]) BaseURL() string             { return s.page.url }
func (s *State[T]) Filters() *Filters           { return s.page.filters }
func (s *State[T]) PageActions() []PageAction   { return s.page.pageActions }
func (s *State[T]) Pagination() Pagination      { return s.pagination }
func (s *State[T]) Submission() Submission      { return s.submission }
func (s *State[T]) IsPost() bool                { return s.r.Method == http.MethodPost }
func (s *State[T]) Redirected() bool            { return s.redirected }
func (s *State[T]) Location() string            { return s.location }

// Action resolves the current action once: a POST body action legal for POST wins,
// then a query action legal for the request method, then the default action on GET.
func (s *State[T]) Action() Action {
	if s.actionResolved {
		return s.action
	}
	s.actionResolved = true
	p := s.page
	if s.IsPost() {
		if a := Action(s.submission.Action); a != "" && p.Allows(a, http.MethodPost) {
			s.action = a
			return s.action
		}
	}
	if a := Action(s.query.Action); a != "" && p.Allows(a, s.r.Method) {
		s.action = a
		return s.action
	}
	if s.r.Method == http.MethodGet {
		s.action = p.defaultAction
	}
	return s.action
}

// ItemID is the body id, else the query id, else "".
func (s *State[T]) ItemID() string {
	if id := strings.TrimSpace(s.submission.ID); id != "" {
		return id
	}
	return strings.TrimSpace(s.query.ID)
}

// Item loads the current item at most once per request.
func (s *State[T]) Item() (*T, bool) {
	switch s.itemState {
	case itemFound:
		return &s.item, true
	case itemMissing:
		return nil, false
	}
	id := s.ItemID()
	if id == "" || s.page.store == nil {
		s.itemState = itemMissing
		return nil, false
	}
	item, err := s.page.store.Get(s.Context(), id)
	if err != nil {
		if !errorsIsNotFound(err) {
			s.logger().WithError(err).Error("failed to load item")
		}
		s.itemState = itemMissing
		return nil, false
	}
	s.item = item
	s.itemState = itemFound
	return &s.item, true
}

// EditForm returns the request's edit form, or nil when the page has none.
func (s *State[T]) EditForm() *Form {
	if s.editForm == nil && s.page.editForm != nil {
		s.editForm = s.page.editForm.build(FormEdit)
		s.editForm.SetCancelURL(s.cancelURL())
	}
	return s.editForm
}

func (s *State[T]) DeleteForm() *Form {
	if s.deleteForm == nil && s.page.deleteForm != nil {
		s.deleteForm = s.page.deleteForm.build(FormDelete)
		s.deleteForm.SetCancelURL(s.cancelURL())
	}
	return s.deleteForm
}

// List returns the request's list model, or nil when the page has no row source.
func (s *State[T]) List() *List {
	if s.list != nil || s.page.listSource == nil {
		return s.list
	}
	l := NewList(s.page.url, s.page.listSource, s.page.filters)
	for _, c := range s.page.columns {
		if err := l.AddColumn(c); err != nil {
			s.logger().WithError(err).Warn("skipping column")
		}
	}
	for _, a := range s.page.rowActions {
		l.AddRowAction(a)
	}
	l.SetReturnTo(s.r.URL.RequestURI())
	s.list = l
	return s.list
}

// Flash is the message shown on this response, read from the transport or set during the request.
func (s *State[T]) Flash() *Flash {
	return s.flash
}

// SetFlash sets a message for the current response only.
func (s *State[T]) SetFlash(kind FlashKind, text string) {
	s.flash = &Flash{Kind: normalizeKind(kind), Text: text}
}

// Redirect hands f to the flash transport, then sends a 302 to url.
// Nothing else should be written to the response afterwards.
func (s *State[T]) Redirect(url string, f *Flash) {
	if url == "" {
		url = "/"
	}
	if f != nil {
		if err := s.page.flash.Write(s.w, s.r, *f); err != nil {
			s.logger().WithError(err).Error("failed to store flash message")
		}
	}
	http.Redirect(s.w, s.r, url, http.StatusFound)
	s.redirected = true
	s.location = url
	s.outcome = outcomeRedirect
}

func (s *State[T]) redirectNotFound() {
	s.Redirect(s.page.url, &Flash{Kind: FlashError, Text: msgNotFound.text(s.Context())})
	s.outcome = outcomeNotFound
}

func (s *State[T]) redirectNoPermission() {
	s.Redirect(s.page.url, &Flash{Kind: FlashError, Text: msgNoPermission.text(s.Context())})
	s.outcome = outcomeForbidden
}

// Set stores a value for templates.
func (s *State[T]) Set(key string, value any) {
	s.data[key] = value
}

func (s *State[T]) Data() map[string]any {
	return s.data
}

func (s *State[T]) FormURL(f *Form) string {
	u := f.URL()
	if u == "" {
		u = s.r.URL.RequestURI()
	}
	return s.page.filters.FormURL.Apply(u, f)
}

func (s *State[T]) FormClass(f *Form) string {
	return classList(s.page.filters.FormClasses.Apply(f.Classes(), f))
}

// FormToken signs the form's scope for the current user.
func (s *State[T]) FormToken(f *Form) string {
	return s.page.tokens.Issue(f.TokenScope(), s.userID())
}

// BeforeContent evaluates the page wide hooks, then the hooks of the current action.
func (s *State[T]) BeforeContent() []templ.Component {
	action := s.Action()
	hooks := append([]Hook(nil), s.page.beforeContent...)
	hooks = append(hooks, s.page.beforeAction[action]...)
	out := make([]templ.Component, 0, len(hooks))
	for _, h := range hooks {
		if c := h(action, s); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ActionView returns the renderer registered for the current action, or nil.
func (s *State[T]) ActionView() templ.Component {
	render, ok := s.page.actionViews[s.Action()]
	if !ok {
		return nil
	}
	return render(s)
}

// verifyToken checks the submitted token against "<action>-<id>". Create also
// accepts tokens issued for the id-less edit form.
func (s *State[T]) verifyToken(action Action, id string) bool {
	token := s.submission.Token
	user := s.userID()
	if err := s.page.tokens.Verify(token, Scope(string(action), id), user); err == nil {
		return true
	}
	if action == ActionCreate {
		return s.page.tokens.Verify(token, Scope(FormEdit, ""), user) == nil
	}
	return false
}

func (s *State[T]) loadFlash() {
	f, err := s.page.flash.ReadAndClear(s.w, s.r)
	if err != nil {
		s.logger().WithError(err).Warn("failed to read flash message")
		return
	}
	s.flash = f
}

func (s *State[T]) cancelURL() string {
	if u := s.query.ReturnTo; isLocalURL(u) {
		return u
	}
	return s.page.url
}

func (s *State[T]) userID() string {
	id, err := composables.UseUserID(s.Context())
	if err != nil {
		return ""
	}
	return id
}

func (s *State[T]) logger() *logrus.Entry {
	fields := logrus.Fields{"page": s.page.id}
	if s.actionResolved && s.action != "" {
		fields["action"] = string(s.action)
	}
	if id := s.ItemID(); id != "" {
		fields["item-id"] = id
	}
	return composables.UseLogger(s.Context()).WithFields(fields)
}

// isLocalURL accepts absolute paths on this host only.
func isLocalURL(u string) bool {
	return strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") && !strings.HasPrefix(u, "/\\")
}
