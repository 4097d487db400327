package crud

import (
	"fmt"
)

// Field is a single named value.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for building a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Fields is an insertion ordered field store shared by forms and list rows.
type Fields struct {
	keys   []string
	values map[string]any
}

func NewFields(fields ...Field) *Fields {
	f := &Fields{values: make(map[string]any, len(fields))}
	for _, field := range fields {
		f.Set(field.Name, field.Value)
	}
	return f
}

// Set stores value under name. Existing names keep their position.
func (f *Fields) Set(name string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = value
}

func (f *Fields) Get(name string) (any, bool) {
	if f == nil || f.values == nil {
		return nil, false
	}
	v, ok := f.values[name]
	return v, ok
}

// Value returns the stored value or nil.
func (f *Fields) Value(name string) any {
	v, _ := f.Get(name)
	return v
}

// String formats the stored value, nil becomes "".
func (f *Fields) String(name string) string {
	return stringify(f.Value(name))
}

func (f *Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

func (f *Fields) Clear() {
	f.keys = nil
	f.values = make(map[string]any)
}

// All returns the fields in insertion order.
func (f *Fields) All() []Field {
	if f == nil {
		return nil
	}
	out := make([]Field, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, Field{Name: k, Value: f.values[k]})
	}
	return out
}

// Map returns a copy of the values keyed by name.
func (f *Fields) Map() map[string]any {
	out := make(map[string]any, f.Len())
	for _, field := range f.All() {
		out[field.Name] = field.Value
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// isEmpty mirrors a loose "has a value" check: nil, "", zero numbers and false are empty.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case uint:
		return t == 0
	case uint64:
		return t == 0
	case float64:
		return t == 0
	default:
		return stringify(t) == ""
	}
}
