package crud

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForm_IsValidResetsErrors(t *testing.T) {
	spec := FormSpec[widget]{
		ID: "widget",
		Validate: func(_ context.Context, f *Form) {
			if f.FieldString("name") == "" {
				f.AddError("name", "Name is required")
			}
		},
	}
	f := spec.build(FormEdit)

	require.False(t, f.IsValid(context.Background()))
	require.Equal(t, []string{"Name is required"}, f.Errors("name"))

	f.SetField("name", "ok")
	require.True(t, f.IsValid(context.Background()))
	require.False(t, f.HasErrors())
	require.Empty(t, f.AllErrors())
}

func TestForm_ErrorsKeepOrder(t *testing.T) {
	f := NewForm(FormEdit, "")
	f.AddError("name", "first")
	f.AddError("name", "second")
	require.Equal(t, []string{"first", "second"}, f.Errors("name"))
	require.Nil(t, f.Errors("other"))
}

func TestForm_SetFieldsClear(t *testing.T) {
	f := NewForm(FormEdit, "")
	f.SetFields([]Field{F("id", "1"), F("name", "a")}, false)
	f.SetFields([]Field{F("name", "b")}, false)
	require.Equal(t, []Field{F("id", "1"), F("name", "b")}, f.Fields())

	f.SetFields([]Field{F("email", "x@y")}, true)
	require.Equal(t, []Field{F("email", "x@y")}, f.Fields())
	require.Nil(t, f.GetField("id"))
}

func TestForm_PopulateRoundTrip(t *testing.T) {
	item := &widget{ID: 12, Name: "Twelve"}
	f := widgetForm.build(FormEdit)
	widgetForm.Populate(f, item)
	require.Equal(t, "12", f.GetField("id"))
	require.Equal(t, "Twelve", f.GetField("name"))
	require.True(t, f.ItemExists())
}

func TestForm_Sanitizers(t *testing.T) {
	f := NewForm(FormEdit, "")
	require.Equal(t, " raw ", f.SanitizeFieldValue("name", " raw "))

	f.RegisterSanitizer("name", func(v any) any { return strings.ToUpper(v.(string)) })
	require.Equal(t, "RAW", f.SanitizeFieldValue("name", "raw"))

	f.RegisterSanitizer("name", nil)
	require.Equal(t, "raw", f.SanitizeFieldValue("name", "raw"))
}

func TestForm_MarkupNames(t *testing.T) {
	f := NewForm(FormDelete, "Member")
	require.Equal(t, "crud-delete-member", f.ElementID())
	require.Equal(t, []string{"crud-delete", "crud-delete-member"}, f.Classes())

	f = NewForm(FormEdit, "")
	require.Equal(t, "crud-edit", f.ElementID())
	require.Equal(t, []string{"crud-edit"}, f.Classes())
}

func TestForm_ItemExists(t *testing.T) {
	f := NewForm(FormEdit, "")
	require.False(t, f.ItemExists())
	f.SetField("id", 0)
	require.False(t, f.ItemExists())
	f.SetField("id", 5)
	require.True(t, f.ItemExists())
	require.Equal(t, "edit-5", f.TokenScope())
}
