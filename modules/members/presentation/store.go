package presentation

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
	"github.com/iota-uz/iota-crud/modules/members/services"
	"github.com/iota-uz/iota-crud/pkg/crud"
)

// Store adapts MemberService to the crud page engine.
type Store struct {
	service *services.MemberService
}

func NewStore(service *services.MemberService) *Store {
	return &Store{service: service}
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (s *Store) Get(ctx context.Context, id string) (member.Member, error) {
	n, ok := parseID(id)
	if !ok {
		return member.Member{}, crud.ErrNotFound
	}
	m, err := s.service.GetByID(ctx, n)
	if errors.Is(err, member.ErrNotFound) {
		return member.Member{}, crud.ErrNotFound
	}
	return m, err
}

func (s *Store) ValidID(_ context.Context, id string) bool {
	_, ok := parseID(id)
	return ok
}

func (s *Store) Create(ctx context.Context, f *crud.Form) error {
	_, err := s.service.Create(ctx, &member.UpdateDTO{Name: f.FieldString("name")})
	return err
}

func (s *Store) Update(ctx context.Context, id string, f *crud.Form) error {
	n, ok := parseID(id)
	if !ok {
		return crud.ErrNotFound
	}
	_, err := s.service.Update(ctx, n, &member.UpdateDTO{Name: f.FieldString("name")})
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return crud.ErrNotFound
	}
	return s.service.Delete(ctx, n)
}

// Fetch lists members ordered by id; every row carries the member under the "member" meta key.
func (s *Store) Fetch(ctx context.Context, page, pageSize int) ([]crud.Row, int, error) {
	members, total, err := s.service.GetPaginated(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]crud.Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, crud.NewRow(
			[]crud.Field{
				crud.F("id", strconv.FormatInt(m.ID(), 10)),
				crud.F("name", m.DisplayName()),
			},
			map[string]any{"member": m},
		))
	}
	return rows, int(total), nil
}
