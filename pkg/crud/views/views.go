package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/intl"
)

// Page renders the hooks registered for the current action followed by its view.
func Page(v crud.View) templ.Component {
	return render(func(h *htmlWriter) {
		for _, c := range v.BeforeContent() {
			h.component(c)
		}
		if c := v.ActionView(); c != nil {
			h.component(c)
			return
		}
		switch v.Action() {
		case crud.ActionList:
			h.component(List(v))
		case crud.ActionCreate, crud.ActionEdit:
			h.component(EditForm(v))
		case crud.ActionDelete:
			h.component(DeleteForm(v))
		}
	})
}

// Banner renders the flash message, if any.
func Banner(f *crud.Flash) templ.Component {
	return render(func(h *htmlWriter) {
		if f == nil || f.Text == "" {
			return
		}
		h.raw(`<div`)
		h.attr("class", "crud-message crud-message-"+string(f.Kind))
		h.raw(`>`)
		h.text(f.Text)
		h.raw(`</div>`)
	})
}

func List(v crud.View) templ.Component {
	return render(func(h *htmlWriter) {
		h.component(Banner(v.Flash()))

		if actions := v.PageActions(); len(actions) > 0 {
			h.raw(`<div class="crud-page-actions">`)
			for _, a := range actions {
				h.raw(a.ButtonHTML(h.ctx, v.BaseURL(), v.Filters()))
			}
			h.raw(`</div>`)
		}

		list := v.List()
		if list == nil {
			return
		}
		hasRowActions := list.HasRowActions()

		h.raw(`<table class="crud-list"><thead><tr>`)
		for _, c := range list.Columns() {
			h.raw(`<th`)
			h.attr("class", list.ColumnClass(c))
			h.attr("id", "crud-col-header-"+c.ID)
			h.raw(`>`)
			h.raw(list.HeaderHTML(c))
			h.raw(`</th>`)
		}
		if hasRowActions {
			h.raw(`<th class="crud-row-actions" id="crud-col-header-row-actions"></th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		for _, row := range list.Rows() {
			h.raw(`<tr`)
			if id := row.ID(); id != "" {
				h.attr("id", "crud-row-"+id)
				h.attr("data-id", id)
			}
			h.raw(`>`)
			for _, c := range list.Columns() {
				h.raw(`<td`)
				h.attr("class", list.ColumnClass(c))
				h.raw(`>`)
				h.raw(list.CellHTML(row, c))
				h.raw(`</td>`)
			}
			if hasRowActions {
				h.raw(`<td class="crud-row-actions">`)
				for _, a := range list.RowActions(row) {
					h.raw(list.RowActionHTML(row, a))
				}
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)

		h.component(Pagination(v.Pagination()))
	})
}

// Pagination renders the pager; nothing is written for a single page.
func Pagination(p crud.Pagination) templ.Component {
	return render(func(h *htmlWriter) {
		links := p.Links()
		if len(links) == 0 {
			return
		}
		h.raw(`<div class="crud-pagination">`)
		if p.HasPrev() {
			h.raw(`<a class="prev page-numbers"`)
			h.attr("href", p.PrevURL())
			h.raw(`>`)
			h.text(intl.Localize(h.ctx, "Crud.Pagination.Previous", "« Previous"))
			h.raw(`</a>`)
		}
		for _, l := range links {
			switch {
			case l.Ellipsis:
				h.raw(`<span class="page-numbers dots">&hellip;</span>`)
			case l.Current:
				h.raw(`<span aria-current="page" class="page-numbers current">`)
				h.text(strconv.Itoa(l.Number))
				h.raw(`</span>`)
			default:
				h.raw(`<a class="page-numbers"`)
				h.attr("href", l.URL)
				h.raw(`>`)
				h.text(strconv.Itoa(l.Number))
				h.raw(`</a>`)
			}
		}
		if p.HasNext() {
			h.raw(`<a class="next page-numbers"`)
			h.attr("href", p.NextURL())
			h.raw(`>`)
			h.text(intl.Localize(h.ctx, "Crud.Pagination.Next", "Next »"))
			h.raw(`</a>`)
		}
		h.raw(`</div>`)
	})
}

func EditForm(v crud.View) templ.Component {
	return render(func(h *htmlWriter) {
		h.component(Banner(v.Flash()))
		f := v.EditForm()
		if f == nil {
			return
		}
		formStart(h, v, f)
		h.component(f.Content())
		formEnd(h, f, "save", intl.Localize(h.ctx, "Crud.Form.Save", "Save"), "crud-btn crud-submit-btn")
	})
}

func DeleteForm(v crud.View) templ.Component {
	return render(func(h *htmlWriter) {
		h.component(Banner(v.Flash()))
		f := v.DeleteForm()
		if f == nil {
			return
		}
		h.raw(`<h3 class="crud-delete-confirm">`)
		h.text(intl.Localize(h.ctx, "Crud.Form.DeleteConfirm", "Are you sure you want to delete this item?"))
		h.raw(`</h3>`)
		formStart(h, v, f)
		h.component(f.Content())
		formEnd(h, f, "delete", intl.Localize(h.ctx, "Crud.Form.Delete", "Delete"), "crud-btn crud-submit-btn crud-danger-btn")
	})
}

func formStart(h *htmlWriter, v crud.View, f *crud.Form) {
	h.raw(`<form`)
	h.attr("action", v.FormURL(f))
	h.attr("method", f.Method())
	h.attr("class", v.FormClass(f))
	h.attr("id", f.ElementID())
	h.raw(`>`)
	hidden(h, "token", v.FormToken(f))
	hidden(h, "action", string(v.Action()))
	if id := f.FieldString("id"); id != "" {
		hidden(h, "id", id)
	}
	if f.HasErrors() {
		h.raw(`<div class="crud-errors">`)
		h.text(intl.Localize(h.ctx, "Crud.Form.FixErrors", "Please fix the errors below."))
		h.raw(`</div>`)
	}
}

func formEnd(h *htmlWriter, f *crud.Form, submit, label, class string) {
	h.raw(`<div class="crud-submit"><button type="submit" name="submit_action"`)
	h.attr("value", submit)
	h.attr("class", class)
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
	if u := f.CancelURL(); u != "" {
		h.raw(`<a`)
		h.attr("href", u)
		h.raw(` class="crud-btn crud-cancel-btn">`)
		h.text(intl.Localize(h.ctx, "Crud.Form.Cancel", "Cancel"))
		h.raw(`</a>`)
	}
	h.raw(`</div></form>`)
}

func hidden(h *htmlWriter, name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(`>`)
}

// FieldErrors lists the validation errors of field, or renders nothing.
func FieldErrors(f *crud.Form, field string) templ.Component {
	return render(func(h *htmlWriter) {
		errs := f.Errors(field)
		if len(errs) == 0 {
			return
		}
		h.raw(`<div class="crud-field-errors">`)
		for _, msg := range errs {
			h.raw(`<div class="crud-field-error">`)
			h.text(msg)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
	})
}

func RequiredLabel() templ.Component {
	return templ.Raw(`<span>*</span>`)
}

// Title renders the heading shown above an action view.
func Title(title string) templ.Component {
	return render(func(h *htmlWriter) {
		if title == "" {
			return
		}
		h.raw(`<h2 class="crud-page-action-title">`)
		h.text(title)
		h.raw(`</h2>`)
	})
}

// NoPermission is shown instead of a page the current user may not view.
func NoPermission() templ.Component {
	return render(func(h *htmlWriter) {
		h.raw(`<div class="crud-message crud-message-error crud-no-permission">`)
		h.text(intl.Localize(h.ctx, "Crud.Messages.NoViewPermission", "Sorry, you do not have permission to view this page."))
		h.raw(`</div>`)
	})
}
