package entity

import (
	"court-reservation-api/core/entity"

	"github.com/lib/pq"
)

type Team struct {
	Name string `db:"name"`

	Slug string `db:"slug"`

	MemberCount int `db:"member_count"`

	Members pq.StringArray `db:"members"`

	entity.BaseEntity
}

func (t *Team) HasMember(username string) bool {
	for _, m := range t.Members {
		if m == username {
			return true
		}
	}
	return false
}
