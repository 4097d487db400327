package presentation

import (
	"context"

	"github.com/iota-uz/iota-crud/pkg/authz"
	"github.com/iota-uz/iota-crud/pkg/composables"
)

var listObject = authz.ObjectName("members", "list")

// Access lets authenticated users in; with an authz service the page also
// needs a casbin grant on members.list.
type Access struct {
	authz *authz.Service
}

func NewAccess(svc *authz.Service) *Access {
	return &Access{authz: svc}
}

func (a *Access) CanView(ctx context.Context) bool {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return false
	}
	if a.authz == nil {
		return true
	}
	if err := a.authz.Authorize(ctx, authz.UserRequest(userID, listObject, "view")); err != nil {
		composables.UseLogger(ctx).WithError(err).Debug("member admin denied")
		return false
	}
	return true
}

func (a *Access) CanActOn(_ context.Context, _ string, userID string) bool {
	return userID != ""
}
