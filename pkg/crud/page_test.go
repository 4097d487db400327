package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-crud/pkg/composables"
)

type widget struct {
	ID   int
	Name string
}

type fakeStore struct {
	items     map[string]widget
	createErr error
	updateErr error
	deleteErr error

	created []string
	updated []string
	deleted []string
	gets    int
}

func newFakeStore(items ...widget) *fakeStore {
	s := &fakeStore{items: map[string]widget{}}
	for _, w := range items {
		s.items[strconv.Itoa(w.ID)] = w
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id string) (widget, error) {
	s.gets++
	w, ok := s.items[id]
	if !ok {
		return widget{}, ErrNotFound
	}
	return w, nil
}

func (s *fakeStore) ValidID(_ context.Context, id string) bool {
	_, ok := s.items[id]
	return ok
}

func (s *fakeStore) Create(_ context.Context, f *Form) error {
	s.created = append(s.created, f.FieldString("name"))
	return s.createErr
}

func (s *fakeStore) Update(_ context.Context, id string, f *Form) error {
	s.updated = append(s.updated, id+":"+f.FieldString("name"))
	return s.updateErr
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *fakeStore) Fetch(_ context.Context, page, size int) ([]Row, int, error) {
	var rows []Row
	for i := (page - 1) * size; i < page*size && i < len(s.items); i++ {
		w := s.items[strconv.Itoa(i+1)]
		rows = append(rows, NewRow([]Field{F("id", w.ID), F("name", w.Name)}, nil))
	}
	return rows, len(s.items), nil
}

type fakeAccess struct {
	view  bool
	actOn bool
}

func (a fakeAccess) CanView(context.Context) bool                  { return a.view }
func (a fakeAccess) CanActOn(context.Context, string, string) bool { return a.actOn }

var widgetForm = FormSpec[widget]{
	ID: "widget",
	Sanitizers: map[string]Sanitizer{
		"name": func(v any) any { return strings.TrimSpace(fmt.Sprint(v)) },
	},
	Populate: func(f *Form, item *widget) {
		if item == nil {
			return
		}
		f.SetFields([]Field{F("id", strconv.Itoa(item.ID)), F("name", item.Name)}, false)
	},
	PopulateFromRequest: func(f *Form, r *http.Request, item *widget) error {
		if err := r.ParseForm(); err != nil {
			return err
		}
		if item != nil {
			f.SetField("id", strconv.Itoa(item.ID))
		}
		f.SetField("name", f.SanitizeFieldValue("name", r.PostForm.Get("field_name")))
		return nil
	},
	Validate: func(_ context.Context, f *Form) {
		if f.FieldString("name") == "" {
			f.AddError("name", "Name is required")
		}
	},
}

const testUser = "user-1"

func newTestPage(store *fakeStore, opts ...Option[widget]) (*Page[widget], *Tokens) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)
	base := []Option[widget]{
		WithAccess[widget](fakeAccess{view: true, actOn: true}),
		WithEditForm(widgetForm),
		WithDeleteForm(widgetForm),
		WithList[widget](store, Column{ID: "id", Name: "ID"}, Column{ID: "name", Name: "Name"}),
		WithTokens[widget](tokens),
	}
	p := NewPage[widget]("widgets", "Widgets", store, append(base, opts...)...)
	p.SetURL("/widgets")
	return p, tokens
}

func get(target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	return r.WithContext(composables.WithUserID(r.Context(), testUser))
}

func post(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r.WithContext(composables.WithUserID(r.Context(), testUser))
}

func flashCookie(t *testing.T, rec *httptest.ResponseRecorder) *Flash {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == DefaultFlashCookie && c.MaxAge > 0 {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(c)
			f, err := NewCookieFlash(time.Minute, false).ReadAndClear(httptest.NewRecorder(), r)
			require.NoError(t, err)
			return f
		}
	}
	return nil
}

func TestResolveAction_ActionTable(t *testing.T) {
	p, _ := newTestPage(newFakeStore())
	cases := []struct {
		name   string
		req    *http.Request
		action Action
	}{
		{"default on get", get("/widgets"), ActionList},
		{"query list on get", get("/widgets?action=list"), ActionList},
		{"query create on get", get("/widgets?action=create"), ActionCreate},
		{"query edit on get", get("/widgets?action=edit"), ActionEdit},
		{"query delete on get", get("/widgets?action=delete"), ActionDelete},
		{"unknown query on get falls back", get("/widgets?action=explode"), ActionList},
		{"body create on post", post("/widgets", url.Values{"action": {"create"}}), ActionCreate},
		{"body list on post is illegal", post("/widgets", url.Values{"action": {"list"}}), ""},
		{"query list on post is illegal", post("/widgets?action=list", nil), ""},
		{"query edit on post", post("/widgets?action=edit", nil), ActionEdit},
		{"body wins over query", post("/widgets?action=delete", url.Values{"action": {"edit"}}), ActionEdit},
		{"illegal body falls through to query", post("/widgets?action=edit", url.Values{"action": {"list"}}), ActionEdit},
		{"illegal body and query", post("/widgets?action=list", url.Values{"action": {"list"}}), ""},
		{"post without action", post("/widgets", nil), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := p.NewState(httptest.NewRecorder(), tc.req)
			require.Equal(t, tc.action, s.Action())
		})
	}
}

func TestResolveAction_Cached(t *testing.T) {
	p, _ := newTestPage(newFakeStore())
	s := p.NewState(httptest.NewRecorder(), get("/widgets?action=edit"))
	require.Equal(t, ActionEdit, s.Action())
	s.query.Action = "delete"
	require.Equal(t, ActionEdit, s.Action())
}

func TestResolveAction_RegisteredAction(t *testing.T) {
	called := false
	p, _ := newTestPage(newFakeStore(), WithAction[widget]("export", func(_ context.Context, s *State[widget]) {
		called = true
	}, nil, http.MethodPost))

	s := p.Screen(httptest.NewRecorder(), post("/widgets", url.Values{"action": {"export"}}))
	require.Equal(t, Action("export"), s.Action())
	require.True(t, called)

	s = p.NewState(httptest.NewRecorder(), get("/widgets?action=export"))
	require.Equal(t, ActionList, s.Action())
}

func TestResolveItemID_BodyBeforeQuery(t *testing.T) {
	p, _ := newTestPage(newFakeStore())
	s := p.NewState(httptest.NewRecorder(), post("/widgets?id=3", url.Values{"id": {"4"}}))
	require.Equal(t, "4", s.ItemID())

	s = p.NewState(httptest.NewRecorder(), post("/widgets?id=3", nil))
	require.Equal(t, "3", s.ItemID())

	s = p.NewState(httptest.NewRecorder(), get("/widgets"))
	require.Empty(t, s.ItemID())
}

func TestScreen_ListPreparesRows(t *testing.T) {
	store := newFakeStore(
		widget{1, "a"}, widget{2, "b"}, widget{3, "c"}, widget{4, "d"}, widget{5, "e"},
	)
	p, _ := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), get("/widgets?crud_page=1&crud_per_page=2"))
	list := s.List()
	require.NotNil(t, list)
	require.Equal(t, 5, list.TotalItems())
	require.Len(t, list.Rows(), 2)
	require.Equal(t, "1", list.Rows()[0].ID())
	require.Equal(t, "2", list.Rows()[1].ID())
	require.Equal(t, 3, s.Pagination().TotalPages())
}

func TestScreen_CreateSuccess(t *testing.T) {
	store := newFakeStore()
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":     {"create"},
		"token":      {tokens.Issue(Scope("create", ""), testUser)},
		"field_name": {"  New widget "},
	}))

	require.True(t, s.Redirected())
	require.Equal(t, []string{"New widget"}, store.created)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/widgets", rec.Header().Get("Location"))
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, Flash{Kind: FlashSuccess, Text: "Item created."}, *f)
}

func TestScreen_CreateAcceptsEditScope(t *testing.T) {
	store := newFakeStore()
	p, tokens := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), post("/widgets", url.Values{
		"action":     {"create"},
		"token":      {tokens.Issue(Scope("edit", ""), testUser)},
		"field_name": {"x"},
	}))

	require.True(t, s.Redirected())
	require.Len(t, store.created, 1)
}

func TestScreen_CreateRejectsBadToken(t *testing.T) {
	store := newFakeStore()
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":     {"create"},
		"token":      {tokens.Issue(Scope("delete", "1"), testUser)},
		"field_name": {"x"},
	}))

	require.True(t, s.Redirected())
	require.Empty(t, store.created)
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, FlashError, f.Kind)
	require.Equal(t, "Sorry, you do not have permission to perform the action.", f.Text)
}

func TestScreen_CreateValidationFailure(t *testing.T) {
	store := newFakeStore()
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":     {"create"},
		"token":      {tokens.Issue(Scope("create", ""), testUser)},
		"field_name": {"   "},
	}))

	require.False(t, s.Redirected())
	require.Empty(t, store.created)
	form := s.EditForm()
	require.True(t, form.HasErrors())
	require.Equal(t, []string{"Name is required"}, form.Errors("name"))
	require.True(t, form.fields.Has("name"))
	require.Equal(t, "", form.FieldString("name"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestScreen_CreateFailureKeepsForm(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("boom")
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":     {"create"},
		"token":      {tokens.Issue(Scope("create", ""), testUser)},
		"field_name": {"kept"},
	}))

	require.False(t, s.Redirected())
	require.Equal(t, &Flash{Kind: FlashError, Text: "Sorry, there was an error saving the item."}, s.Flash())
	require.Equal(t, "kept", s.EditForm().FieldString("name"))
	require.Nil(t, flashCookie(t, rec))
}

func TestScreen_CreateGetPopulatesEmptyForm(t *testing.T) {
	p, _ := newTestPage(newFakeStore())
	s := p.Screen(httptest.NewRecorder(), get("/widgets?action=create"))
	require.False(t, s.Redirected())
	require.NotNil(t, s.EditForm())
	require.False(t, s.EditForm().ItemExists())
	require.Equal(t, "edit-", s.EditForm().TokenScope())
}

func TestScreen_EditInvalidID(t *testing.T) {
	store := newFakeStore(widget{1, "a"})
	p, _ := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, get("/widgets?action=edit&id=999"))

	require.True(t, s.Redirected())
	require.Empty(t, store.updated)
	require.Equal(t, "/widgets", rec.Header().Get("Location"))
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, Flash{Kind: FlashError, Text: "The requested item could not be found."}, *f)
}

func TestScreen_EditMissingIDIsNoop(t *testing.T) {
	store := newFakeStore(widget{1, "a"})
	p, _ := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, get("/widgets?action=edit"))

	require.False(t, s.Redirected())
	require.Zero(t, store.gets)
	require.False(t, s.EditForm().ItemExists())
}

func TestScreen_EditWithoutItemPermission(t *testing.T) {
	store := newFakeStore(widget{1, "a"})
	p, _ := newTestPage(store, WithAccess[widget](fakeAccess{view: true}))
	rec := httptest.NewRecorder()

	s := p.Screen(rec, get("/widgets?action=edit&id=1"))

	require.True(t, s.Redirected())
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, "Sorry, you do not have permission to perform the action.", f.Text)
}

func TestScreen_EditGetPopulates(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, _ := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), get("/widgets?action=edit&id=1"))

	form := s.EditForm()
	require.Equal(t, "1", form.FieldString("id"))
	require.Equal(t, "alpha", form.FieldString("name"))
	require.Equal(t, "edit-1", form.TokenScope())
	require.Equal(t, 1, store.gets)
}

func TestScreen_EditSuccess(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":     {"edit"},
		"id":         {"1"},
		"token":      {tokens.Issue(Scope("edit", "1"), testUser)},
		"field_name": {"beta"},
	}))

	require.True(t, s.Redirected())
	require.Equal(t, []string{"1:beta"}, store.updated)
	require.Equal(t, 1, store.gets)
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, Flash{Kind: FlashSuccess, Text: "Item updated."}, *f)
}

func TestScreen_EditTokenBoundToItemAndUser(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"}, widget{2, "beta"})
	p, tokens := newTestPage(store)

	for name, token := range map[string]string{
		"other item": tokens.Issue(Scope("edit", "2"), testUser),
		"other user": tokens.Issue(Scope("edit", "1"), "someone-else"),
		"garbage":    "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			s := p.Screen(httptest.NewRecorder(), post("/widgets", url.Values{
				"action":     {"edit"},
				"id":         {"1"},
				"token":      {token},
				"field_name": {"gamma"},
			}))
			require.True(t, s.Redirected())
		})
	}
	require.Empty(t, store.updated)
}

func TestScreen_EditUpdateFailure(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	store.updateErr = errors.New("db down")
	p, tokens := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), post("/widgets", url.Values{
		"action":     {"edit"},
		"id":         {"1"},
		"token":      {tokens.Issue(Scope("edit", "1"), testUser)},
		"field_name": {"beta"},
	}))

	require.False(t, s.Redirected())
	require.Equal(t, FlashError, s.Flash().Kind)
	require.Equal(t, "Sorry, there was an error updating the item.", s.Flash().Text)
	require.Equal(t, "beta", s.EditForm().FieldString("name"))
}

func TestScreen_DeleteWithoutConfirmation(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action": {"delete"},
		"id":     {"1"},
		"token":  {tokens.Issue(Scope("delete", "1"), testUser)},
	}))

	require.False(t, s.Redirected())
	require.Empty(t, store.deleted)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alpha", s.DeleteForm().FieldString("name"))
}

func TestScreen_DeleteConfirmed(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()

	s := p.Screen(rec, post("/widgets", url.Values{
		"action":        {"delete"},
		"id":            {"1"},
		"token":         {tokens.Issue(Scope("delete", "1"), testUser)},
		"submit_action": {"delete"},
	}))

	require.True(t, s.Redirected())
	require.Equal(t, []string{"1"}, store.deleted)
	f := flashCookie(t, rec)
	require.NotNil(t, f)
	require.Equal(t, Flash{Kind: FlashSuccess, Text: "Item deleted."}, *f)
}

func TestScreen_DeleteFailure(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	store.deleteErr = errors.New("constraint")
	p, tokens := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), post("/widgets", url.Values{
		"action":        {"delete"},
		"id":            {"1"},
		"token":         {tokens.Issue(Scope("delete", "1"), testUser)},
		"submit_action": {"delete"},
	}))

	require.False(t, s.Redirected())
	require.Equal(t, &Flash{Kind: FlashError, Text: "Sorry, the item could not be deleted."}, s.Flash())
}

func TestScreen_ReadsFlashOnce(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, tokens := newTestPage(store)
	rec := httptest.NewRecorder()
	p.Screen(rec, post("/widgets", url.Values{
		"action":        {"delete"},
		"id":            {"1"},
		"token":         {tokens.Issue(Scope("delete", "1"), testUser)},
		"submit_action": {"delete"},
	}))

	next := get("/widgets")
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	s := p.Screen(rec2, next)
	require.Equal(t, &Flash{Kind: FlashSuccess, Text: "Item deleted."}, s.Flash())

	third := get("/widgets")
	for _, c := range rec2.Result().Cookies() {
		if c.MaxAge > 0 {
			third.AddCookie(c)
		}
	}
	s = p.Screen(httptest.NewRecorder(), third)
	require.Nil(t, s.Flash())
}

func TestScreen_CancelURLUsesLocalReturnTo(t *testing.T) {
	store := newFakeStore(widget{1, "alpha"})
	p, _ := newTestPage(store)

	s := p.Screen(httptest.NewRecorder(), get("/widgets?action=edit&id=1&return_to=%2Fwidgets%3Fcrud_page%3D2"))
	require.Equal(t, "/widgets?crud_page=2", s.EditForm().CancelURL())

	s = p.Screen(httptest.NewRecorder(), get("/widgets?action=edit&id=1&return_to=https%3A%2F%2Fevil.example"))
	require.Equal(t, "/widgets", s.EditForm().CancelURL())
}

func TestScreen_BeforeContentHooks(t *testing.T) {
	var seen []Action
	hook := func(a Action, _ View) templ.Component {
		seen = append(seen, a)
		return nil
	}
	p, _ := newTestPage(newFakeStore(), WithBeforeContent[widget](hook), WithBeforeAction[widget](ActionCreate, hook))

	s := p.Screen(httptest.NewRecorder(), get("/widgets?action=create"))
	require.Empty(t, s.BeforeContent())
	require.Equal(t, []Action{ActionCreate, ActionCreate}, seen)

	seen = nil
	s = p.Screen(httptest.NewRecorder(), get("/widgets"))
	s.BeforeContent()
	require.Equal(t, []Action{ActionList}, seen)
}

func TestPage_DeniesViewByDefault(t *testing.T) {
	p := NewPage[widget]("w", "W", newFakeStore())
	require.False(t, p.CanView(context.Background()))
}
