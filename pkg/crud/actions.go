package crud

import (
	"context"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// PageAction is a page level button such as "Create".
type PageAction struct {
	ID    string
	Label string
	Icon  templ.Component
}

// URL links to the action on baseURL, returning to baseURL afterwards.
func (a PageAction) URL(baseURL string, filters *Filters) string {
	u := withQuery(baseURL, url.Values{
		"action":    {a.ID},
		"return_to": {baseURL},
	})
	if filters == nil {
		return u
	}
	return filters.PageActionURL.Apply(u, a)
}

// ButtonHTML renders the action as an anchor styled as a button.
func (a PageAction) ButtonHTML(ctx context.Context, baseURL string, filters *Filters) string {
	classes := []string{"crud-page-action-btn", "crud-page-action-btn-" + sanitizeKey(a.ID)}
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(templ.EscapeString(a.URL(baseURL, filters)))
	b.WriteString(`" class="`)
	b.WriteString(templ.EscapeString(classList(classes)))
	b.WriteString(`">`)
	if a.Icon != nil {
		if err := a.Icon.Render(ctx, &b); err != nil {
			b.Reset()
			return ""
		}
	}
	b.WriteString(templ.EscapeString(a.Label))
	b.WriteString(`</a>`)
	html := b.String()
	if filters == nil {
		return html
	}
	return filters.PageActionHTML.Apply(html, a)
}

// RowAction is a per row link. A nil URL func uses the default action URL;
// an empty result hides the link.
type RowAction struct {
	ID    string
	Label string
	URL   func(l *List, row Row) string
}

func EditRowAction(label string) RowAction {
	return RowAction{ID: string(ActionEdit), Label: label}
}

func DeleteRowAction(label string) RowAction {
	return RowAction{ID: string(ActionDelete), Label: label}
}

// DefaultURL is <base>?action=<id>&id=<row id>&return_to=<current page>.
func (a RowAction) DefaultURL(l *List, row Row) string {
	return withQuery(l.BaseURL(), url.Values{
		"action":    {a.ID},
		"id":        {row.ID()},
		"return_to": {l.ReturnTo()},
	})
}

func withQuery(base string, values url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + values.Encode()
	}
	q := u.Query()
	for k, v := range values {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String()
}
