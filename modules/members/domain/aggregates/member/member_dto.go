package member

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/iota-crud/pkg/constants"
	"github.com/iota-uz/iota-crud/pkg/intl"
)

// UpdateDTO is the submitted member form, shared by create and edit.
type UpdateDTO struct {
	Name string `form:"field_name" validate:"required,max=190"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = CleanName(d.Name)
}

// Ok validates the DTO and returns localized messages keyed by form field.
func (d *UpdateDTO) Ok(ctx context.Context) (map[string]string, bool) {
	d.Normalize()

	err := constants.Validate.Struct(d)
	if err == nil {
		return map[string]string{}, true
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return map[string]string{"name": err.Error()}, false
	}

	out := make(map[string]string, len(validatorErrs))
	for _, fe := range validatorErrs {
		switch fe.Field() {
		case "Name":
			out["name"] = nameMessage(ctx, fe.Tag())
		default:
			out[fe.Field()] = fe.Error()
		}
	}
	return out, false
}

func nameMessage(ctx context.Context, tag string) string {
	switch tag {
	case "required":
		return intl.Localize(ctx, "Members.Errors.NameRequired", "Name is required")
	case "max":
		return intl.Localize(ctx, "Members.Errors.NameTooLong", "Name must be at most 190 characters")
	default:
		return intl.Localize(ctx, "Members.Errors.NameInvalid", "Name is invalid")
	}
}
