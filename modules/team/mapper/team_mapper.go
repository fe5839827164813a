package mapper

import (
	"court-reservation-api/modules/team/dto"
	"court-reservation-api/modules/team/entity"

	"github.com/gosimple/slug"
)

func ToTeamEntity(req *dto.TeamRequest) *entity.Team {
	return &entity.Team{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		MemberCount: len(req.Members),
		Members:     append([]string(nil), req.Members...),
	}
}

func ToTeamResponse(team *entity.Team) *dto.TeamResponse {
	return &dto.TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Slug:        team.Slug,
		MemberCount: team.MemberCount,
		Members:     append([]string{}, team.Members...),
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}

func ToTeamResponses(teams []*entity.Team) []dto.TeamResponse {
	out := make([]dto.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, *ToTeamResponse(t))
	}
	return out
}
