package crud

import (
	"context"
	"errors"

	"github.com/iota-uz/iota-crud/pkg/intl"
)

type message struct {
	id  string
	def string
}

func (m message) text(ctx context.Context) string {
	return intl.Localize(ctx, m.id, m.def)
}

var (
	msgNotFound     = message{"Crud.Messages.NotFound", "The requested item could not be found."}
	msgNoPermission = message{"Crud.Messages.NoPermission", "Sorry, you do not have permission to perform the action."}
	msgUpdated      = message{"Crud.Messages.Updated", "Item updated."}
	msgCreated      = message{"Crud.Messages.Created", "Item created."}
	msgDeleted      = message{"Crud.Messages.Deleted", "Item deleted."}
	msgUpdateFailed = message{"Crud.Messages.UpdateFailed", "Sorry, there was an error updating the item."}
	msgCreateFailed = message{"Crud.Messages.CreateFailed", "Sorry, there was an error saving the item."}
	msgDeleteFailed = message{"Crud.Messages.DeleteFailed", "Sorry, the item could not be deleted."}
)

func errorsIsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
