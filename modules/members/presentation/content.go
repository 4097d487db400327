package presentation

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/crud/views"
	"github.com/iota-uz/iota-crud/pkg/intl"
)

func nameLabel(ctx context.Context) string {
	return intl.Localize(ctx, "Members.Fields.Name", "Name")
}

// editContent is the name input with its required marker and errors.
func editContent(f *crud.Form) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="crud-field"><div class="crud-input crud-text-field">`+
			`<label for="crud-field-name">`+templ.EscapeString(nameLabel(ctx))+` `); err != nil {
			return err
		}
		if err := views.RequiredLabel().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</label><input type="text" name="field_name" value="`+
			templ.EscapeString(f.FieldString("name"))+
			`" class="crud-field" id="crud-field-name"></div>`); err != nil {
			return err
		}
		if err := views.FieldErrors(f, "name").Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func deleteContent(f *crud.Form) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="crud-field-display"><div class="crud-field-name">`+
			templ.EscapeString(nameLabel(ctx))+
			`</div><div class="crud-field-value">`+
			templ.EscapeString(f.FieldString("name"))+
			`</div></div>`)
		return err
	})
}
