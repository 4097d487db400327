package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-h/templ"
)

var ErrDuplicateColumn = errors.New("crud: duplicate column id")

type Column struct {
	ID   string
	Name string
}

// Row is one list entry: display values plus metadata for collaborators,
// e.g. the entity the row was built from.
type Row struct {
	fields *Fields
	meta   map[string]any
}

func NewRow(fields []Field, meta map[string]any) Row {
	return Row{fields: NewFields(fields...), meta: meta}
}

func (r Row) Column(id string) any {
	return r.fields.Value(id)
}

func (r Row) ColumnString(id string) string {
	return r.fields.String(id)
}

func (r Row) Meta(key string) any {
	if r.meta == nil {
		return nil
	}
	return r.meta[key]
}

// ID is the canonical item id taken from the "id" column.
func (r Row) ID() string {
	return r.ColumnString("id")
}

// ListSource loads one page of rows and the total number of items.
type ListSource interface {
	Fetch(ctx context.Context, page, pageSize int) ([]Row, int, error)
}

type ListSourceFunc func(ctx context.Context, page, pageSize int) ([]Row, int, error)

func (f ListSourceFunc) Fetch(ctx context.Context, page, pageSize int) ([]Row, int, error) {
	return f(ctx, page, pageSize)
}

// List is the per request list model.
type List struct {
	baseURL    string
	returnTo   string
	columns    []Column
	rows       []Row
	rowActions []RowAction
	total      int
	source     ListSource
	filters    *Filters
	ctx        context.Context
}

func NewList(baseURL string, source ListSource, filters *Filters) *List {
	if filters == nil {
		filters = &Filters{}
	}
	return &List{
		baseURL: baseURL,
		source:  source,
		filters: filters,
	}
}

func (l *List) AddColumn(c Column) error {
	for _, existing := range l.columns {
		if existing.ID == c.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
	}
	l.columns = append(l.columns, c)
	return nil
}

func (l *List) AddRowAction(a RowAction) {
	l.rowActions = append(l.rowActions, a)
}

func (l *List) Columns() []Column    { return l.columns }
func (l *List) Rows() []Row          { return l.rows }
func (l *List) TotalItems() int      { return l.total }
func (l *List) BaseURL() string      { return l.baseURL }
func (l *List) ReturnTo() string     { return l.returnTo }
func (l *List) SetReturnTo(u string) { l.returnTo = u }

// Context is the context of the last Prepare call.
func (l *List) Context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

// Prepare loads rows and the total for the given page, replacing previous results.
func (l *List) Prepare(ctx context.Context, page, pageSize int) error {
	l.ctx = ctx
	if l.source == nil {
		l.rows, l.total = nil, 0
		return nil
	}
	rows, total, err := l.source.Fetch(ctx, page, pageSize)
	if err != nil {
		return err
	}
	l.rows = rows
	l.total = total
	return nil
}

func (l *List) HasRowActions() bool {
	return len(l.rowActions) > 0
}

// RowActions returns the filtered actions for row.
func (l *List) RowActions(row Row) []RowAction {
	actions := append([]RowAction(nil), l.rowActions...)
	return l.filters.RowActions.Apply(actions, row)
}

func (l *List) RowActionURL(row Row, a RowAction) string {
	var u string
	if a.URL != nil {
		u = a.URL(l, row)
	} else {
		u = a.DefaultURL(l, row)
	}
	return l.filters.RowActionURL.Apply(u, RowActionContext{List: l, Row: row, Action: a})
}

// ColumnClass is crud-col-<id> after filters.
func (l *List) ColumnClass(c Column) string {
	classes := l.filters.ColumnClasses.Apply([]string{"crud-col-" + sanitizeKey(c.ID)}, c)
	return classList(classes)
}

func (l *List) HeaderHTML(c Column) string {
	return l.filters.HeaderHTML.Apply(templ.EscapeString(c.Name), c)
}

func (l *List) CellHTML(row Row, c Column) string {
	return l.filters.CellHTML.Apply(templ.EscapeString(row.ColumnString(c.ID)), CellContext{Row: row, Column: c})
}

// RowActionHTML renders a link for a, or "" when the action has no URL.
func (l *List) RowActionHTML(row Row, a RowAction) string {
	u := l.RowActionURL(row, a)
	html := ""
	if u != "" {
		html = fmt.Sprintf(
			`<a href="%s" class="%s">%s</a>`,
			templ.EscapeString(u),
			"crud-action-"+sanitizeKey(a.ID),
			templ.EscapeString(a.Label),
		)
	}
	return l.filters.RowActionHTML.Apply(html, RowActionContext{List: l, Row: row, Action: a, URL: u})
}
