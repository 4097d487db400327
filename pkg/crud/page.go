package crud

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var (
	ErrNotFound = errors.New("crud: item not found")
	ErrNoStore  = errors.New("crud: no store configured")
)

// Store is the persistence side of a page. Get returns ErrNotFound for unknown ids.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	ValidID(ctx context.Context, id string) bool
	Create(ctx context.Context, f *Form) error
	Update(ctx context.Context, id string, f *Form) error
	Delete(ctx context.Context, id string) error
}

// Access decides who may see the page and act on its items.
type Access interface {
	CanView(ctx context.Context) bool
	CanActOn(ctx context.Context, id, userID string) bool
}

type denyAll struct{}

func (denyAll) CanView(context.Context) bool                  { return false }
func (denyAll) CanActOn(context.Context, string, string) bool { return false }

// ActionHandler runs the screen step of an action.
type ActionHandler[T any] func(ctx context.Context, s *State[T])

// Hook contributes markup rendered above the action view.
type Hook func(action Action, v View) templ.Component

// Page is an immutable CRUD page definition. All request state lives in State.
type Page[T any] struct {
	id          string
	label       string
	description string
	url         string

	store  Store[T]
	access Access

	methods       map[Action][]string
	handlers      map[Action]ActionHandler[T]
	actionViews   map[Action]func(View) templ.Component
	defaultAction Action

	perPage    int
	maxPerPage int

	editForm   *FormSpec[T]
	deleteForm *FormSpec[T]

	listSource  ListSource
	columns     []Column
	rowActions  []RowAction
	pageActions []PageAction

	beforeContent []Hook
	beforeAction  map[Action][]Hook

	filters *Filters
	flash   FlashTransport
	tokens  *Tokens
}

type Option[T any] func(p *Page[T])

func WithDescription[T any](description string) Option[T] {
	return func(p *Page[T]) { p.description = description }
}

func WithAccess[T any](a Access) Option[T] {
	return func(p *Page[T]) { p.access = a }
}

func WithEditForm[T any](spec FormSpec[T]) Option[T] {
	return func(p *Page[T]) { p.editForm = &spec }
}

func WithDeleteForm[T any](spec FormSpec[T]) Option[T] {
	return func(p *Page[T]) { p.deleteForm = &spec }
}

// WithList sets the row source and the columns in display order.
func WithList[T any](source ListSource, columns ...Column) Option[T] {
	return func(p *Page[T]) {
		p.listSource = source
		p.columns = append(p.columns, columns...)
	}
}

// WithRowActions appends row actions after the default edit and delete actions.
func WithRowActions[T any](actions ...RowAction) Option[T] {
	return func(p *Page[T]) { p.rowActions = append(p.rowActions, actions...) }
}

func WithPageActions[T any](actions ...PageAction) Option[T] {
	return func(p *Page[T]) { p.pageActions = append(p.pageActions, actions...) }
}

func WithFlash[T any](t FlashTransport) Option[T] {
	return func(p *Page[T]) { p.flash = t }
}

func WithTokens[T any](t *Tokens) Option[T] {
	return func(p *Page[T]) { p.tokens = t }
}

func WithPagination[T any](perPage, maxPerPage int) Option[T] {
	return func(p *Page[T]) {
		if perPage > 0 {
			p.perPage = perPage
		}
		if maxPerPage > 0 {
			p.maxPerPage = maxPerPage
		}
	}
}

func WithFilters[T any](f *Filters) Option[T] {
	return func(p *Page[T]) { p.filters = f }
}

func WithBeforeContent[T any](hooks ...Hook) Option[T] {
	return func(p *Page[T]) { p.beforeContent = append(p.beforeContent, hooks...) }
}

// WithBeforeAction adds hooks that only run for action.
func WithBeforeAction[T any](action Action, hooks ...Hook) Option[T] {
	return func(p *Page[T]) { p.beforeAction[action] = append(p.beforeAction[action], hooks...) }
}

// WithAction registers or replaces the handler of action and the methods it accepts.
// A nil render keeps the built in view for known actions.
func WithAction[T any](action Action, handler ActionHandler[T], render func(View) templ.Component, methods ...string) Option[T] {
	return func(p *Page[T]) {
		if len(methods) == 0 {
			methods = []string{http.MethodGet}
		}
		p.methods[action] = methods
		if handler != nil {
			p.handlers[action] = handler
		}
		if render != nil {
			p.actionViews[action] = render
		}
	}
}

func WithDefaultAction[T any](action Action) Option[T] {
	return func(p *Page[T]) { p.defaultAction = action }
}

// NewPage builds a page with the list, create, edit and delete actions registered.
// Without WithAccess nobody can view the page.
func NewPage[T any](id, label string, store Store[T], opts ...Option[T]) *Page[T] {
	p := &Page[T]{
		id:            id,
		label:         label,
		store:         store,
		access:        denyAll{},
		defaultAction: ActionList,
		perPage:       DefaultPerPage,
		maxPerPage:    DefaultMaxPerPage,
		beforeAction:  map[Action][]Hook{},
		actionViews:   map[Action]func(View) templ.Component{},
		filters:       &Filters{},
		methods: map[Action][]string{
			ActionList:   {http.MethodGet},
			ActionCreate: {http.MethodGet, http.MethodPost},
			ActionEdit:   {http.MethodGet, http.MethodPost},
			ActionDelete: {http.MethodGet, http.MethodPost},
		},
		rowActions: []RowAction{
			EditRowAction("Edit"),
			DeleteRowAction("Delete"),
		},
	}
	p.handlers = map[Action]ActionHandler[T]{
		ActionList:   p.screenList,
		ActionCreate: p.screenCreate,
		ActionEdit:   p.screenEdit,
		ActionDelete: p.screenDelete,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.flash == nil {
		p.flash = NewCookieFlash(DefaultFlashTTL, false)
	}
	if p.tokens == nil {
		p.tokens = NewTokens(nil, DefaultTokenTTL)
	}
	return p
}

func (p *Page[T]) ID() string          { return p.id }
func (p *Page[T]) Label() string       { return p.label }
func (p *Page[T]) Description() string { return p.description }
func (p *Page[T]) URL() string         { return p.url }

// SetURL sets the base URL every redirect and generated link is built on.
func (p *Page[T]) SetURL(url string) { p.url = url }

func (p *Page[T]) CanView(ctx context.Context) bool {
	return p.access.CanView(ctx)
}

// Allows reports whether action may be requested with method.
func (p *Page[T]) Allows(action Action, method string) bool {
	methods, ok := p.methods[action]
	if !ok {
		return false
	}
	return slices.Contains(methods, method)
}

var tracer = otel.Tracer("github.com/iota-uz/iota-crud/pkg/crud")

// Screen resolves the current action and runs its handler. Callers must stop
// when the returned state reports Redirected.
func (p *Page[T]) Screen(w http.ResponseWriter, r *http.Request) *State[T] {
	ctx, span := tracer.Start(r.Context(), "crud.screen", trace.WithAttributes(
		attribute.String("crud.page", p.id),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	s := p.NewState(w, r.WithContext(ctx))
	s.loadFlash()

	action := s.Action()
	if action == "" {
		s.outcome = outcomeNoop
		p.record(s)
		return s
	}
	span.SetAttributes(attribute.String("crud.action", string(action)))

	if handler, ok := p.handlers[action]; ok {
		handler(ctx, s)
	}
	span.SetAttributes(attribute.String("crud.outcome", s.outcome))
	p.record(s)
	return s
}

func (p *Page[T]) record(s *State[T]) {
	action := string(s.action)
	if action == "" {
		action = "none"
	}
	actionsTotal.WithLabelValues(p.id, action, s.outcome).Inc()
}

func (p *Page[T]) screenList(ctx context.Context, s *State[T]) {
	list := s.List()
	if list == nil {
		return
	}
	if err := list.Prepare(ctx, s.pagination.Page, s.pagination.PerPage); err != nil {
		s.logger().WithError(err).Error("failed to load list")
		s.outcome = outcomeError
		return
	}
	s.pagination.Total = list.TotalItems()
}

// screenEdit validates the id, checks item permission, then either applies the
// submitted form or populates it from the stored item.
func (p *Page[T]) screenEdit(ctx context.Context, s *State[T]) {
	id := s.ItemID()
	form := s.EditForm()
	if id == "" || form == nil {
		return
	}
	item, ok := p.authorizeItem(ctx, s, id)
	if !ok {
		return
	}

	if s.IsPost() {
		if !s.verifyToken(ActionEdit, id) {
			s.redirectNoPermission()
			return
		}
		if err := populateFromRequest(p.editForm, form, s.r, item); err != nil {
			s.logger().WithError(err).Warn("failed to read submitted form")
			s.outcome = outcomeInvalid
			return
		}
		if !form.IsValid(ctx) {
			s.outcome = outcomeInvalid
			return
		}
		if err := p.update(ctx, id, form); err != nil {
			s.logger().WithError(err).Error("failed to update item")
			s.SetFlash(FlashError, msgUpdateFailed.text(ctx))
			s.outcome = outcomeError
			return
		}
		s.Redirect(p.url, &Flash{Kind: FlashSuccess, Text: msgUpdated.text(ctx)})
		return
	}

	populate(p.editForm, form, item)
}

func (p *Page[T]) screenDelete(ctx context.Context, s *State[T]) {
	id := s.ItemID()
	form := s.DeleteForm()
	if id == "" || form == nil {
		return
	}
	item, ok := p.authorizeItem(ctx, s, id)
	if !ok {
		return
	}

	if s.IsPost() {
		if !s.verifyToken(ActionDelete, id) {
			s.redirectNoPermission()
			return
		}
		if s.submission.SubmitAction != "delete" {
			populate(p.deleteForm, form, item)
			return
		}
		if err := p.remove(ctx, id); err != nil {
			s.logger().WithError(err).Error("failed to delete item")
			s.SetFlash(FlashError, msgDeleteFailed.text(ctx))
			populate(p.deleteForm, form, item)
			s.outcome = outcomeError
			return
		}
		s.Redirect(p.url, &Flash{Kind: FlashSuccess, Text: msgDeleted.text(ctx)})
		return
	}

	populate(p.deleteForm, form, item)
}

// screenCreate uses the edit form; the form carries no id until the item exists.
func (p *Page[T]) screenCreate(ctx context.Context, s *State[T]) {
	form := s.EditForm()
	if form == nil {
		return
	}

	if s.IsPost() {
		if !s.verifyToken(ActionCreate, "") {
			s.redirectNoPermission()
			return
		}
		if err := populateFromRequest(p.editForm, form, s.r, nil); err != nil {
			s.logger().WithError(err).Warn("failed to read submitted form")
			s.outcome = outcomeInvalid
			return
		}
		if !form.IsValid(ctx) {
			s.outcome = outcomeInvalid
			return
		}
		if err := p.create(ctx, form); err != nil {
			s.logger().WithError(err).Error("failed to create item")
			s.SetFlash(FlashError, msgCreateFailed.text(ctx))
			s.outcome = outcomeError
			return
		}
		s.Redirect(p.url, &Flash{Kind: FlashSuccess, Text: msgCreated.text(ctx)})
		return
	}

	populate(p.editForm, form, nil)
}

// authorizeItem runs the id, permission and lookup checks shared by edit and delete,
// redirecting on failure.
func (p *Page[T]) authorizeItem(ctx context.Context, s *State[T], id string) (*T, bool) {
	if p.store == nil || !p.store.ValidID(ctx, id) {
		s.redirectNotFound()
		return nil, false
	}
	if !p.access.CanActOn(ctx, id, s.userID()) {
		s.redirectNoPermission()
		return nil, false
	}
	item, ok := s.Item()
	if !ok {
		s.redirectNotFound()
		return nil, false
	}
	return item, true
}

func (p *Page[T]) create(ctx context.Context, f *Form) error {
	if p.store == nil {
		return ErrNoStore
	}
	return p.store.Create(ctx, f)
}

func (p *Page[T]) update(ctx context.Context, id string, f *Form) error {
	if p.store == nil {
		return ErrNoStore
	}
	return p.store.Update(ctx, id, f)
}

func (p *Page[T]) remove(ctx context.Context, id string) error {
	if p.store == nil {
		return ErrNoStore
	}
	return p.store.Delete(ctx, id)
}

func populate[T any](spec *FormSpec[T], f *Form, item *T) {
	if spec == nil || spec.Populate == nil {
		return
	}
	spec.Populate(f, item)
}

func populateFromRequest[T any](spec *FormSpec[T], f *Form, r *http.Request, item *T) error {
	if spec == nil || spec.PopulateFromRequest == nil {
		return nil
	}
	return spec.PopulateFromRequest(f, r, item)
}
