package views

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/crud"
)

type note struct {
	ID   int
	Text string
}

type noteStore struct {
	notes []note
}

func (s *noteStore) Get(_ context.Context, id string) (note, error) {
	for _, n := range s.notes {
		if strconv.Itoa(n.ID) == id {
			return n, nil
		}
	}
	return note{}, crud.ErrNotFound
}

func (s *noteStore) ValidID(ctx context.Context, id string) bool {
	_, err := s.Get(ctx, id)
	return err == nil
}

func (s *noteStore) Create(context.Context, *crud.Form) error         { return nil }
func (s *noteStore) Update(context.Context, string, *crud.Form) error { return nil }
func (s *noteStore) Delete(context.Context, string) error             { return nil }

func (s *noteStore) Fetch(_ context.Context, page, size int) ([]crud.Row, int, error) {
	var rows []crud.Row
	for i := (page - 1) * size; i < page*size && i < len(s.notes); i++ {
		n := s.notes[i]
		rows = append(rows, crud.NewRow([]crud.Field{crud.F("id", n.ID), crud.F("text", n.Text)}, nil))
	}
	return rows, len(s.notes), nil
}

type allowAll struct{}

func (allowAll) CanView(context.Context) bool                  { return true }
func (allowAll) CanActOn(context.Context, string, string) bool { return true }

func notePage(store *noteStore) *crud.Page[note] {
	form := crud.FormSpec[note]{
		ID: "note",
		Populate: func(f *crud.Form, n *note) {
			if n != nil {
				f.SetFields([]crud.Field{crud.F("id", strconv.Itoa(n.ID)), crud.F("text", n.Text)}, false)
			}
		},
		PopulateFromRequest: func(f *crud.Form, r *http.Request, n *note) error {
			if n != nil {
				f.SetField("id", strconv.Itoa(n.ID))
			}
			f.SetField("text", strings.TrimSpace(r.PostFormValue("field_text")))
			return nil
		},
		Validate: func(_ context.Context, f *crud.Form) {
			if f.FieldString("text") == "" {
				f.AddError("text", "Text is required")
			}
		},
		Content: func(f *crud.Form) templ.Component {
			return FieldErrors(f, "text")
		},
	}
	p := crud.NewPage[note]("notes", "Notes", store,
		crud.WithAccess[note](allowAll{}),
		crud.WithList[note](store, crud.Column{ID: "id", Name: "ID"}, crud.Column{ID: "text", Name: "Text"}),
		crud.WithEditForm(form),
		crud.WithDeleteForm(form),
		crud.WithPageActions[note](crud.PageAction{ID: "create", Label: "Create"}),
		crud.WithTokens[note](crud.NewTokens([]byte("k"), time.Hour)),
		crud.WithBeforeContent[note](func(a crud.Action, _ crud.View) templ.Component {
			if a == crud.ActionEdit {
				return Title("Edit Note")
			}
			return nil
		}),
	)
	p.SetURL("/notes")
	return p
}

func renderState(t *testing.T, p *crud.Page[note], r *http.Request) *goquery.Document {
	t.Helper()
	r = r.WithContext(composables.WithUserID(r.Context(), "u1"))
	s := p.Screen(httptest.NewRecorder(), r)
	require.False(t, s.Redirected())
	var buf bytes.Buffer
	require.NoError(t, Page(s).Render(s.Context(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestList_Markup(t *testing.T) {
	store := &noteStore{notes: []note{{1, "one"}, {2, "<two>"}, {3, "three"}}}
	doc := renderState(t, notePage(store), httptest.NewRequest(http.MethodGet, "/notes?crud_per_page=2", nil))

	require.Equal(t, 1, doc.Find("a.crud-page-action-btn.crud-page-action-btn-create").Length())
	require.Equal(t, "ID", strings.TrimSpace(doc.Find("th#crud-col-header-id").Text()))
	require.True(t, doc.Find("th#crud-col-header-text").HasClass("crud-col-text"))

	rows := doc.Find("tbody tr")
	require.Equal(t, 2, rows.Length())
	second := doc.Find("tr#crud-row-2")
	id, _ := second.Attr("data-id")
	require.Equal(t, "2", id)
	require.Equal(t, "<two>", second.Find("td.crud-col-text").Text())

	edit, ok := second.Find("a.crud-action-edit").Attr("href")
	require.True(t, ok)
	u, err := url.Parse(edit)
	require.NoError(t, err)
	require.Equal(t, "edit", u.Query().Get("action"))
	require.Equal(t, "2", u.Query().Get("id"))
	require.Equal(t, 1, second.Find("a.crud-action-delete").Length())

	require.Equal(t, 1, doc.Find(".crud-pagination .current").Length())
	next, ok := doc.Find(".crud-pagination a.next").Attr("href")
	require.True(t, ok)
	require.Equal(t, "/notes?crud_page=2&crud_per_page=2", next)
}

func TestEditForm_Markup(t *testing.T) {
	store := &noteStore{notes: []note{{7, "seven"}}}
	doc := renderState(t, notePage(store), httptest.NewRequest(http.MethodGet, "/notes?action=edit&id=7", nil))

	require.Equal(t, "Edit Note", doc.Find("h2.crud-page-action-title").Text())
	form := doc.Find("form#crud-edit-note")
	require.Equal(t, 1, form.Length())
	require.True(t, form.HasClass("crud-edit"))
	require.True(t, form.HasClass("crud-edit-note"))
	method, _ := form.Attr("method")
	require.Equal(t, "POST", method)

	token, _ := form.Find(`input[name="token"]`).Attr("value")
	require.NotEmpty(t, token)
	id, _ := form.Find(`input[name="id"]`).Attr("value")
	require.Equal(t, "7", id)
	action, _ := form.Find(`input[name="action"]`).Attr("value")
	require.Equal(t, "edit", action)

	submit := form.Find(`button[name="submit_action"]`)
	value, _ := submit.Attr("value")
	require.Equal(t, "save", value)
	require.Equal(t, "Save", submit.Text())
	cancel, _ := form.Find("a.crud-cancel-btn").Attr("href")
	require.Equal(t, "/notes", cancel)
	require.Equal(t, 0, doc.Find(".crud-errors").Length())
}

func TestEditForm_ShowsErrors(t *testing.T) {
	store := &noteStore{notes: []note{{7, "seven"}}}
	p := notePage(store)

	get := httptest.NewRequest(http.MethodGet, "/notes?action=edit&id=7", nil)
	token, _ := renderState(t, p, get).Find(`input[name="token"]`).Attr("value")

	body := url.Values{"action": {"edit"}, "id": {"7"}, "token": {token}, "field_text": {" "}}
	r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	doc := renderState(t, p, r)

	require.Equal(t, "Please fix the errors below.", doc.Find(".crud-errors").Text())
	require.Equal(t, "Text is required", doc.Find(".crud-field-errors .crud-field-error").Text())
}

func TestDeleteForm_Markup(t *testing.T) {
	store := &noteStore{notes: []note{{3, "three"}}}
	doc := renderState(t, notePage(store), httptest.NewRequest(http.MethodGet, "/notes?action=delete&id=3", nil))

	require.Equal(t, "Are you sure you want to delete this item?", doc.Find("h3.crud-delete-confirm").Text())
	form := doc.Find("form#crud-delete-note")
	require.Equal(t, 1, form.Length())
	submit := form.Find("button.crud-danger-btn")
	value, _ := submit.Attr("value")
	require.Equal(t, "delete", value)
	require.Equal(t, "Delete", submit.Text())
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Banner(&crud.Flash{Kind: crud.FlashError, Text: "a < b"}).Render(context.Background(), &buf))
	require.Equal(t, `<div class="crud-message crud-message-error">a &lt; b</div>`, buf.String())

	buf.Reset()
	require.NoError(t, Banner(nil).Render(context.Background(), &buf))
	require.Empty(t, buf.String())
}

func TestNoPermission(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NoPermission().Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "Sorry, you do not have permission to view this page.")
}
