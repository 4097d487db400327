package crud

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	FormEdit   = "edit"
	FormDelete = "delete"
)

// Sanitizer rewrites a raw submitted value before it is stored on a form.
type Sanitizer func(value any) any

// Form holds the fields and validation errors of a single create, edit or delete form.
// A Form lives for one request.
type Form struct {
	action     string
	id         string
	method     string
	url        string
	cancelURL  string
	fields     *Fields
	errors     map[string][]string
	sanitizers map[string]Sanitizer
	validate   func(ctx context.Context, f *Form)
	content    func(f *Form) templ.Component
}

func NewForm(action, id string) *Form {
	return &Form{
		action:     action,
		id:         id,
		method:     http.MethodPost,
		fields:     NewFields(),
		errors:     map[string][]string{},
		sanitizers: map[string]Sanitizer{},
	}
}

func (f *Form) Action() string    { return f.action }
func (f *Form) ID() string        { return f.id }
func (f *Form) Method() string    { return f.method }
func (f *Form) URL() string       { return f.url }
func (f *Form) CancelURL() string { return f.cancelURL }

func (f *Form) SetURL(url string)       { f.url = url }
func (f *Form) SetCancelURL(url string) { f.cancelURL = url }

func (f *Form) SetField(name string, value any) {
	f.fields.Set(name, value)
}

// GetField returns the stored value or nil.
func (f *Form) GetField(name string) any {
	return f.fields.Value(name)
}

func (f *Form) FieldString(name string) string {
	return f.fields.String(name)
}

// SetFields merges values into the form, discarding existing fields first when clear is set.
func (f *Form) SetFields(values []Field, clear bool) {
	if clear {
		f.fields.Clear()
	}
	for _, v := range values {
		f.fields.Set(v.Name, v.Value)
	}
}

func (f *Form) Fields() []Field {
	return f.fields.All()
}

// RegisterSanitizer installs fn for the named field.
func (f *Form) RegisterSanitizer(field string, fn Sanitizer) {
	if fn == nil {
		delete(f.sanitizers, field)
		return
	}
	f.sanitizers[field] = fn
}

// SanitizeFieldValue runs the sanitizer registered for field, if any.
func (f *Form) SanitizeFieldValue(field string, raw any) any {
	if fn, ok := f.sanitizers[sanitizeKey(field)]; ok {
		return fn(raw)
	}
	return raw
}

func (f *Form) AddError(field, message string) {
	f.errors[field] = append(f.errors[field], message)
}

func (f *Form) HasErrors() bool {
	return len(f.errors) > 0
}

func (f *Form) Errors(field string) []string {
	return f.errors[field]
}

// AllErrors returns a copy of the error map.
func (f *Form) AllErrors() map[string][]string {
	out := make(map[string][]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// IsValid clears previous errors, runs the validate hook and reports whether
// any field error was recorded.
func (f *Form) IsValid(ctx context.Context) bool {
	f.errors = map[string][]string{}
	if f.validate != nil {
		f.validate(ctx, f)
	}
	return !f.HasErrors()
}

// ItemExists is true when the form carries a non-empty id field.
func (f *Form) ItemExists() bool {
	return !isEmpty(f.GetField("id"))
}

// ElementID is crud-<action> with the form id appended when set.
func (f *Form) ElementID() string {
	id := "crud-" + sanitizeKey(f.action)
	if f.id != "" {
		id += "-" + sanitizeKey(f.id)
	}
	return id
}

// Classes returns the base CSS classes before filters run.
func (f *Form) Classes() []string {
	base := "crud-" + sanitizeKey(f.action)
	classes := []string{base}
	if f.id != "" {
		classes = append(classes, base+"-"+sanitizeKey(f.id))
	}
	return classes
}

// TokenScope is the anti-forgery scope the rendered form is signed for.
func (f *Form) TokenScope() string {
	return Scope(f.action, f.FieldString("id"))
}

// Content returns the entity specific markup, or nil.
func (f *Form) Content() templ.Component {
	if f.content == nil {
		return nil
	}
	return f.content(f)
}

// FormSpec describes how an entity hydrates, validates and renders a form.
type FormSpec[T any] struct {
	ID         string
	Sanitizers map[string]Sanitizer

	// Populate hydrates the form from item; item is nil when creating.
	Populate func(f *Form, item *T)
	// PopulateFromRequest hydrates the form from the submitted body.
	PopulateFromRequest func(f *Form, r *http.Request, item *T) error
	Validate            func(ctx context.Context, f *Form)
	Content             func(f *Form) templ.Component
}

func (s *FormSpec[T]) build(action string) *Form {
	f := NewForm(action, s.ID)
	for name, fn := range s.Sanitizers {
		f.RegisterSanitizer(sanitizeKey(name), fn)
	}
	f.validate = s.Validate
	f.content = s.Content
	return f
}

// sanitizeKey lowercases s and keeps only [a-z0-9_-].
func sanitizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
