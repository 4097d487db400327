package authz

import (
	"github.com/go-faster/errors"
)

var (
	ErrForbidden   = errors.New("permission denied")
	ErrMissingPath = errors.New("authz: model and policy paths are required")
)

// ForbiddenError carries the denied request and matches ErrForbidden.
type ForbiddenError struct {
	Request Request
}

func (e *ForbiddenError) Error() string {
	return "authz: denied " + e.Request.String()
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
