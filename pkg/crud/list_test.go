package crud

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_PrepareReplacesRows(t *testing.T) {
	store := newFakeStore(widget{1, "a"}, widget{2, "b"}, widget{3, "c"})
	l := NewList("/widgets", store, nil)

	require.NoError(t, l.Prepare(context.Background(), 1, 2))
	require.Len(t, l.Rows(), 2)
	require.NoError(t, l.Prepare(context.Background(), 1, 2))
	require.Len(t, l.Rows(), 2)
	require.Equal(t, 3, l.TotalItems())

	require.NoError(t, l.Prepare(context.Background(), 2, 2))
	require.Len(t, l.Rows(), 1)
	require.Equal(t, "3", l.Rows()[0].ID())
}

func TestList_PrepareError(t *testing.T) {
	l := NewList("/widgets", ListSourceFunc(func(context.Context, int, int) ([]Row, int, error) {
		return nil, 0, errors.New("boom")
	}), nil)
	require.Error(t, l.Prepare(context.Background(), 1, 10))
}

func TestList_DuplicateColumn(t *testing.T) {
	l := NewList("/widgets", nil, nil)
	require.NoError(t, l.AddColumn(Column{ID: "id", Name: "ID"}))
	require.ErrorIs(t, l.AddColumn(Column{ID: "id", Name: "Other"}), ErrDuplicateColumn)
	require.Len(t, l.Columns(), 1)
}

func TestList_RowActionURLs(t *testing.T) {
	l := NewList("/widgets", nil, nil)
	l.SetReturnTo("/widgets?crud_page=2")
	row := NewRow([]Field{F("id", 7), F("name", "seven")}, map[string]any{"owner": "me"})
	require.Equal(t, "me", row.Meta("owner"))

	u, err := url.Parse(l.RowActionURL(row, EditRowAction("Edit")))
	require.NoError(t, err)
	require.Equal(t, "/widgets", u.Path)
	require.Equal(t, "edit", u.Query().Get("action"))
	require.Equal(t, "7", u.Query().Get("id"))
	require.Equal(t, "/widgets?crud_page=2", u.Query().Get("return_to"))
}

func TestList_EmptyURLRendersNothing(t *testing.T) {
	l := NewList("/widgets", nil, nil)
	row := NewRow([]Field{F("id", 1)}, nil)
	hidden := RowAction{ID: "view", Label: "View", URL: func(*List, Row) string { return "" }}
	require.Empty(t, l.RowActionHTML(row, hidden))

	html := l.RowActionHTML(row, DeleteRowAction("Delete"))
	require.Contains(t, html, `class="crud-action-delete"`)
	require.Contains(t, html, ">Delete</a>")
}

func TestList_FiltersRunInOrder(t *testing.T) {
	filters := &Filters{}
	filters.ColumnClasses.Add(func(c []string, _ Column) []string { return append(c, "first") })
	filters.ColumnClasses.Add(func(c []string, _ Column) []string { return append(c, "second") })
	filters.CellHTML.Add(func(html string, in CellContext) string { return "<b>" + html + "</b>" })
	filters.RowActions.Add(func(actions []RowAction, row Row) []RowAction {
		if row.ID() == "1" {
			return actions[:1]
		}
		return actions
	})
	l := NewList("/widgets", nil, filters)
	l.AddRowAction(EditRowAction("Edit"))
	l.AddRowAction(DeleteRowAction("Delete"))

	col := Column{ID: "name", Name: "Name"}
	require.Equal(t, "crud-col-name first second", l.ColumnClass(col))
	require.Equal(t, "<b>a &amp; b</b>", l.CellHTML(NewRow([]Field{F("name", "a & b")}, nil), col))
	require.Len(t, l.RowActions(NewRow([]Field{F("id", 1)}, nil)), 1)
	require.Len(t, l.RowActions(NewRow([]Field{F("id", 2)}, nil)), 2)
}
