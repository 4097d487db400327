package persistence

import (
	"time"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
)

type memberRow struct {
	ID          int64     `db:"id"`
	Login       string    `db:"login"`
	Name        string    `db:"name"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toDomainMember(row memberRow) member.Member {
	return member.Hydrate(
		row.ID,
		row.Login,
		row.Name,
		row.DisplayName,
		row.CreatedAt,
		row.UpdatedAt,
	)
}
