package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
	"github.com/iota-uz/iota-crud/pkg/composables"
)

const (
	selectMembersQuery = `SELECT id, login, name, display_name, created_at, updated_at FROM members`
	countMembersQuery  = `SELECT COUNT(*) FROM members`
	loginExistsQuery   = `SELECT EXISTS (SELECT 1 FROM members WHERE login = ?)`
	insertMemberQuery  = `INSERT INTO members (login, name, display_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?) RETURNING id, login, name, display_name, created_at, updated_at`
	updateMemberQuery = `UPDATE members SET name = ?, display_name = ?, updated_at = ? WHERE id = ?`
	deleteMemberQuery = `DELETE FROM members WHERE id = ?`

	defaultLimit = 50
)

type MemberRepository struct {
	now func() time.Time
}

func NewMemberRepository() member.Repository {
	return &MemberRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemberRepository) GetPaginated(ctx context.Context, params *member.FindParams) ([]member.Member, error) {
	if params == nil {
		params = &member.FindParams{}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	q, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var rows []memberRow
	query := q.Rebind(selectMembersQuery + ` ORDER BY id LIMIT ? OFFSET ?`)
	if err := q.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "select members")
	}
	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainMember(row))
	}
	return out, nil
}

func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.GetContext(ctx, &total, countMembersQuery); err != nil {
		return 0, errors.Wrap(err, "count members")
	}
	return total, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (member.Member, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}
	var row memberRow
	if err := q.GetContext(ctx, &row, q.Rebind(selectMembersQuery+` WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrapf(err, "get member %d", id)
	}
	return toDomainMember(row), nil
}

func (r *MemberRepository) LoginExists(ctx context.Context, login string) (bool, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := q.GetContext(ctx, &exists, q.Rebind(loginExistsQuery), login); err != nil {
		return false, errors.Wrapf(err, "check login %q", login)
	}
	return exists, nil
}

func (r *MemberRepository) Create(ctx context.Context, m member.Member) (member.Member, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}
	now := r.now()
	var row memberRow
	err = q.GetContext(ctx, &row, q.Rebind(insertMemberQuery), m.Login(), m.Name(), m.DisplayName(), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return member.Member{}, member.ErrLoginTaken
		}
		return member.Member{}, errors.Wrap(err, "insert member")
	}
	return toDomainMember(row), nil
}

func (r *MemberRepository) Update(ctx context.Context, m member.Member) (member.Member, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}
	res, err := q.ExecContext(ctx, q.Rebind(updateMemberQuery), m.Name(), m.DisplayName(), r.now(), m.ID())
	if err != nil {
		return member.Member{}, errors.Wrapf(err, "update member %d", m.ID())
	}
	if err := requireAffected(res); err != nil {
		return member.Member{}, err
	}
	return r.GetByID(ctx, m.ID())
}

func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, q.Rebind(deleteMemberQuery), id)
	if err != nil {
		return errors.Wrapf(err, "delete member %d", id)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return member.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
