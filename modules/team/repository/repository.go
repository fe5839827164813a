package repository

import (
	"context"

	"court-reservation-api/modules/team/entity"
)

type TeamRepositoryInterface interface {
	CreateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error)
	UpdateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error)
	// GetTeamByID returns (nil, nil) when the team does not exist.
	GetTeamByID(ctx context.Context, id string) (*entity.Team, error)
	GetTeamsByMember(ctx context.Context, username string) ([]*entity.Team, error)
	// FindMissingUsernames returns the input usernames that are not registered,
	// in input order.
	FindMissingUsernames(ctx context.Context, usernames []string) ([]string, error)
}
