package member

import "context"

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Member, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (Member, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)
	Delete(ctx context.Context, id int64) error
}
