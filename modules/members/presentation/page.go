package presentation

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	icons "github.com/iota-uz/icons/phosphor"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
	"github.com/iota-uz/iota-crud/modules/members/services"
	"github.com/iota-uz/iota-crud/pkg/authz"
	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/crud"
	"github.com/iota-uz/iota-crud/pkg/crud/views"
	"github.com/iota-uz/iota-crud/pkg/intl"
)

const (
	PageID          = "member_admin"
	PageLabel       = "Member Administration"
	PageDescription = "Page for administrators to manage members."
	FormID          = "member"
)

type PageOptions struct {
	Service *services.MemberService
	// Nil lets every authenticated user in.
	Authz *authz.Service
	// Profile link template; {login} and {id} are substituted. Empty hides the View action.
	ProfileURL string
	Flash      crud.FlashTransport
	Tokens     *crud.Tokens
	PerPage    int
	MaxPerPage int
}

func NewPage(opts PageOptions) *crud.Page[member.Member] {
	store := NewStore(opts.Service)
	pageOpts := []crud.Option[member.Member]{
		crud.WithDescription[member.Member](PageDescription),
		crud.WithAccess[member.Member](NewAccess(opts.Authz)),
		crud.WithList[member.Member](store,
			crud.Column{ID: "id", Name: "ID"},
			crud.Column{ID: "name", Name: "Name"},
		),
		// Edit and delete come with the page.
		crud.WithRowActions[member.Member](viewRowAction(opts.Service, opts.ProfileURL)),
		crud.WithPageActions[member.Member](crud.PageAction{
			ID:    string(crud.ActionCreate),
			Label: "Create",
			Icon:  icons.PlusCircle(icons.Props{Size: "16"}),
		}),
		crud.WithEditForm(editFormSpec()),
		crud.WithDeleteForm(deleteFormSpec()),
		crud.WithBeforeContent[member.Member](pageHeader),
	}
	if opts.Flash != nil {
		pageOpts = append(pageOpts, crud.WithFlash[member.Member](opts.Flash))
	}
	if opts.Tokens != nil {
		pageOpts = append(pageOpts, crud.WithTokens[member.Member](opts.Tokens))
	}
	if opts.PerPage > 0 {
		pageOpts = append(pageOpts, crud.WithPagination[member.Member](opts.PerPage, opts.MaxPerPage))
	}
	return crud.NewPage[member.Member](PageID, PageLabel, store, pageOpts...)
}

func sanitizeName(v any) any {
	s, _ := v.(string)
	return member.CleanName(s)
}

func editFormSpec() crud.FormSpec[member.Member] {
	return crud.FormSpec[member.Member]{
		ID:         FormID,
		Sanitizers: map[string]crud.Sanitizer{"name": sanitizeName},
		Populate: func(f *crud.Form, item *member.Member) {
			if item == nil {
				return
			}
			f.SetFields([]crud.Field{
				crud.F("id", strconv.FormatInt(item.ID(), 10)),
				crud.F("name", item.Name()),
			}, false)
		},
		PopulateFromRequest: func(f *crud.Form, r *http.Request, item *member.Member) error {
			if item != nil {
				f.SetField("id", strconv.FormatInt(item.ID(), 10))
			}
			dto, err := composables.UseForm(&member.UpdateDTO{}, r)
			if err != nil {
				return err
			}
			f.SetField("name", f.SanitizeFieldValue("name", dto.Name))
			return nil
		},
		Validate: func(ctx context.Context, f *crud.Form) {
			dto := &member.UpdateDTO{Name: f.FieldString("name")}
			errs, ok := dto.Ok(ctx)
			if ok {
				return
			}
			for field, msg := range errs {
				f.AddError(field, msg)
			}
		},
		Content: editContent,
	}
}

func deleteFormSpec() crud.FormSpec[member.Member] {
	return crud.FormSpec[member.Member]{
		ID: FormID,
		Populate: func(f *crud.Form, item *member.Member) {
			if item == nil {
				return
			}
			f.SetFields([]crud.Field{
				crud.F("id", strconv.FormatInt(item.ID(), 10)),
				crud.F("name", item.DisplayName()),
			}, false)
		},
		Content: deleteContent,
	}
}

func pageHeader(action crud.Action, v crud.View) templ.Component {
	ctx := v.Context()
	switch action {
	case crud.ActionCreate:
		return views.Title(intl.Localize(ctx, "Members.Titles.Create", "Add Member"))
	case crud.ActionEdit:
		return views.Title(intl.Localize(ctx, "Members.Titles.Edit", "Edit Member"))
	case crud.ActionDelete:
		return views.Title(intl.Localize(ctx, "Members.Titles.Delete", "Delete Member"))
	default:
		return nil
	}
}

// viewRowAction links to the member's public profile.
func viewRowAction(service *services.MemberService, profileURL string) crud.RowAction {
	return crud.RowAction{
		ID:    "view",
		Label: "View",
		URL: func(l *crud.List, row crud.Row) string {
			if profileURL == "" {
				return ""
			}
			m, ok := row.Meta("member").(member.Member)
			if !ok {
				id, valid := parseID(row.ID())
				if !valid || service == nil {
					return ""
				}
				found, err := service.GetByID(l.Context(), id)
				if err != nil {
					return ""
				}
				m = found
			}
			return ProfileURL(profileURL, m)
		},
	}
}

// ProfileURL fills the {login} and {id} placeholders of tmpl.
func ProfileURL(tmpl string, m member.Member) string {
	return strings.NewReplacer(
		"{login}", url.PathEscape(m.Login()),
		"{id}", strconv.FormatInt(m.ID(), 10),
	).Replace(tmpl)
}
