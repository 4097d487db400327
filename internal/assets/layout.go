package assets

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/iota-uz/iota-crud/pkg/intl"
)

// Layout is the full HTML document every content page is rendered into.
func Layout(title string, data map[string]any, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := "en"
		if tag, ok := intl.UseLocale(ctx); ok {
			lang = tag.String()
		}
		if t, ok := data["title"].(string); ok && t != "" {
			title = t
		}
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="`+templ.EscapeString(lang)+`"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title>`+
			`<link rel="stylesheet" href="`+templ.EscapeString(CrudCSS())+`"></head>`+
			`<body><main class="crud-page">`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
