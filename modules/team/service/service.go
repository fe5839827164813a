package service

import (
	"context"
	"time"

	"court-reservation-api/core/cache"
	"court-reservation-api/core/errors"
	"court-reservation-api/modules/team/dto"
	"court-reservation-api/modules/team/repository"
)

type TeamServiceInterface interface {
	LookupTeamsByUsername(ctx context.Context, username string) ([]dto.TeamResponse, *errors.AppError)
	LookupTeamByID(ctx context.Context, id string) (*dto.TeamResponse, *errors.AppError)
	CreateTeam(ctx context.Context, username string, req *dto.TeamRequest) (*dto.TeamResponse, *errors.AppError)
	UpdateTeam(ctx context.Context, username string, id string, req *dto.TeamRequest) (*dto.TeamResponse, *errors.AppError)
	ValidateUsernames(ctx context.Context, usernames []string) (*dto.ValidateUsernamesResponse, *errors.AppError)
}

type TeamService struct {
	repo     repository.TeamRepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewTeamService builds the directory service. cache may be nil, in which case
// every lookup goes to the repository.
func NewTeamService(repo repository.TeamRepositoryInterface, c cache.Cache, cacheTTL time.Duration) *TeamService {
	return &TeamService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}
