package service

import (
	"context"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/utils"
	"court-reservation-api/modules/team/dto"
	"court-reservation-api/modules/team/mapper"
)

func teamCacheKey(id string) string {
	return constants.RedisKeyTeam + id
}

func (s *TeamService) LookupTeamsByUsername(ctx context.Context, username string) ([]dto.TeamResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	teams, err := s.repo.GetTeamsByMember(ctx, username)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get teams failed", err)
	}
	logger.Debug("TeamService:LookupTeamsByUsername:Result", "username", username, "total_items", len(teams))
	return mapper.ToTeamResponses(teams), nil
}

func (s *TeamService) LookupTeamByID(ctx context.Context, id string) (*dto.TeamResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if s.cache != nil {
		var cached dto.TeamResponse
		found, err := s.cache.GetJSON(ctx, teamCacheKey(id), &cached)
		if err != nil {
			logger.Warn("TeamService:LookupTeamByID:CacheGet", "team_id", id, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	team, err := s.repo.GetTeamByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get team failed", err)
	}
	if team == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "team not found", nil)
	}

	response := mapper.ToTeamResponse(team)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, teamCacheKey(id), response, s.cacheTTL); err != nil {
			logger.Warn("TeamService:LookupTeamByID:CacheSet", "team_id", id, "error", err)
		}
	}
	return response, nil
}

func (s *TeamService) ValidateUsernames(ctx context.Context, usernames []string) (*dto.ValidateUsernamesResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	missing, err := s.repo.FindMissingUsernames(ctx, usernames)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "validate usernames failed", err)
	}
	return &dto.ValidateUsernamesResponse{MissingUsernames: missing}, nil
}

func (s *TeamService) checkMembers(ctx context.Context, members []string) *errors.AppError {
	missing, err := s.repo.FindMissingUsernames(ctx, members)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "validate usernames failed", err)
	}
	if len(missing) > 0 {
		logger.Info("TeamService:CheckMembers:MissingUsernames", "missing", missing)
		return errors.NewAppError(errors.ErrInvalidInput, "unknown usernames", nil).
			WithDetails(dto.ValidateUsernamesResponse{MissingUsernames: missing})
	}
	return nil
}

// CreateTeam registers a team. The caller must be one of its members and every
// member must be a registered user.
func (s *TeamService) CreateTeam(ctx context.Context, username string, req *dto.TeamRequest) (*dto.TeamResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	team := mapper.ToTeamEntity(req)
	if !team.HasMember(username) {
		return nil, errors.NewAppError(errors.ErrForbidden, "you must be a member of the team you create", nil)
	}
	if appErr := s.checkMembers(ctx, req.Members); appErr != nil {
		return nil, appErr
	}

	team.ID = utils.GenerateTeamID()
	created, err := s.repo.CreateTeam(ctx, team)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "create team failed", err)
	}

	logger.Info("TeamService:CreateTeam:Created", "team_id", created.ID, "name", created.Name, "member_count", created.MemberCount)
	return mapper.ToTeamResponse(created), nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, username string, id string, req *dto.TeamRequest) (*dto.TeamResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	existing, err := s.repo.GetTeamByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get team failed", err)
	}
	if existing == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "team not found", nil)
	}
	if !existing.HasMember(username) {
		return nil, errors.NewAppError(errors.ErrForbidden, "only team members can edit the team", nil)
	}
	if appErr := s.checkMembers(ctx, req.Members); appErr != nil {
		return nil, appErr
	}

	team := mapper.ToTeamEntity(req)
	team.ID = existing.ID
	updated, err := s.repo.UpdateTeam(ctx, team)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "update team failed", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, teamCacheKey(id)); err != nil {
			logger.Warn("TeamService:UpdateTeam:CacheDel", "team_id", id, "error", err)
		}
	}

	logger.Info("TeamService:UpdateTeam:Updated", "team_id", id, "member_count", updated.MemberCount)
	return mapper.ToTeamResponse(updated), nil
}
