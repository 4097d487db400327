package crud

import (
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Chain is an ordered list of transforms threaded through a single extension point.
type Chain[V any, C any] []func(V, C) V

func (c *Chain[V, C]) Add(fn func(V, C) V) {
	*c = append(*c, fn)
}

func (c Chain[V, C]) Apply(v V, in C) V {
	for _, fn := range c {
		v = fn(v, in)
	}
	return v
}

// CellContext is handed to cell markup filters.
type CellContext struct {
	Row    Row
	Column Column
}

// RowActionContext is handed to row action URL and markup filters.
type RowActionContext struct {
	List   *List
	Row    Row
	Action RowAction
	URL    string
}

// Filters collects the extension points of a page. The zero value applies nothing.
type Filters struct {
	FormURL        Chain[string, *Form]
	FormClasses    Chain[[]string, *Form]
	PageActionURL  Chain[string, PageAction]
	PageActionHTML Chain[string, PageAction]
	ColumnClasses  Chain[[]string, Column]
	HeaderHTML     Chain[string, Column]
	CellHTML       Chain[string, CellContext]
	RowActions     Chain[[]RowAction, Row]
	RowActionURL   Chain[string, RowActionContext]
	RowActionHTML  Chain[string, RowActionContext]
}

// classList joins classes, letting later utility classes win over earlier conflicting ones.
func classList(classes []string) string {
	return twmerge.Merge(strings.Join(classes, " "))
}
