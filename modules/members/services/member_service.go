package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/eventbus"
)

// Logins are tried as base, base-2 ... base-<maxLoginAttempts>.
const maxLoginAttempts = 1000

type MemberService struct {
	repo      member.Repository
	publisher eventbus.EventBus
}

func NewMemberService(repo member.Repository, publisher eventbus.EventBus) *MemberService {
	return &MemberService{repo: repo, publisher: publisher}
}

// GetPaginated returns one page (1-based) of members ordered by id and the total count.
func (s *MemberService) GetPaginated(ctx context.Context, page, pageSize int) ([]member.Member, int64, error) {
	if page < 1 {
		page = 1
	}
	members, err := s.repo.GetPaginated(ctx, &member.FindParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (s *MemberService) GetByID(ctx context.Context, id int64) (member.Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MemberService) Create(ctx context.Context, dto *member.UpdateDTO) (member.Member, error) {
	if dto == nil {
		return member.Member{}, errors.New("missing dto")
	}
	dto.Normalize()
	entity := member.New(dto.Name)
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		login := member.LoginCandidate(entity.Login(), attempt)
		taken, err := s.repo.LoginExists(ctx, login)
		if err != nil {
			return member.Member{}, err
		}
		if taken {
			continue
		}
		created, err := s.repo.Create(ctx, entity.WithLogin(login))
		if errors.Is(err, member.ErrLoginTaken) {
			// Lost a race for this login; try the next suffix.
			continue
		}
		if err != nil {
			return member.Member{}, err
		}
		s.publisher.Publish(ctx, &member.CreatedEvent{Result: created})
		return created, nil
	}
	return member.Member{}, member.ErrLoginTaken
}

// Update renames the member inside one transaction. UpdatedEvent is published after commit.
func (s *MemberService) Update(ctx context.Context, id int64, dto *member.UpdateDTO) (member.Member, error) {
	if dto == nil {
		return member.Member{}, errors.New("missing dto")
	}
	dto.Normalize()

	var current, updated member.Member
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		current, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, current.Rename(dto.Name))
		return err
	})
	if err != nil {
		return member.Member{}, err
	}
	s.publisher.Publish(ctx, &member.UpdatedEvent{Data: current, Result: updated})
	return updated, nil
}

func (s *MemberService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, &member.DeletedEvent{ID: id})
	return nil
}

// Diff returns the JSON patch turning before into after, ignoring timestamps.
func Diff(before, after member.Member) (jsondiff.Patch, error) {
	return jsondiff.Compare(before.Snapshot(), after.Snapshot())
}
