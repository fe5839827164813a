package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"court-reservation-api/core/database"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/team/entity"

	"github.com/lib/pq"
)

type TeamRepository struct {
	DB database.IDatabase
}

func NewTeamRepository(db database.IDatabase) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) CreateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error) {
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now

	query := `
		INSERT INTO teams (id, name, slug, member_count, members, created_at, updated_at)
		VALUES (:id, :name, :slug, :member_count, :members, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, team)
	if err != nil {
		logger.Error("TeamRepository:CreateTeam", "error", err)
		return nil, err
	}
	return team, nil
}

func (r *TeamRepository) UpdateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error) {
	team.UpdatedAt = time.Now().UTC()

	result, err := r.DB.SQLx().ExecContext(ctx, `
		UPDATE teams
		SET name = $1, slug = $2, member_count = $3, members = $4, updated_at = $5
		WHERE id = $6
	`, team.Name, team.Slug, team.MemberCount, team.Members, team.UpdatedAt, team.ID)
	if err != nil {
		logger.Error("TeamRepository:UpdateTeam", "team_id", team.ID, "error", err)
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		logger.Error("TeamRepository:UpdateTeam - RowsAffected", "error", err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("team with id %s not found", team.ID)
	}
	return team, nil
}

func (r *TeamRepository) GetTeamByID(ctx context.Context, id string) (*entity.Team, error) {
	var team entity.Team
	query := `
		SELECT id, name, slug, member_count, members, created_at, updated_at
		FROM teams
		WHERE id = $1
	`
	err := r.DB.GetContext(ctx, &team, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("TeamRepository:GetTeamByID", "team_id", id, "error", err)
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamsByMember(ctx context.Context, username string) ([]*entity.Team, error) {
	var teams []*entity.Team
	query := `
		SELECT id, name, slug, member_count, members, created_at, updated_at
		FROM teams
		WHERE $1 = ANY(members)
		ORDER BY name
	`
	if err := r.DB.SelectContext(ctx, &teams, query, username); err != nil {
		logger.Error("TeamRepository:GetTeamsByMember", "username", username, "error", err)
		return nil, err
	}
	return teams, nil
}

func (r *TeamRepository) FindMissingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	var found []string
	query := `SELECT username FROM users WHERE username = ANY($1)`
	if err := r.DB.SelectContext(ctx, &found, query, pq.Array(usernames)); err != nil {
		logger.Error("TeamRepository:FindMissingUsernames", "error", err)
		return nil, err
	}
	return missingFrom(usernames, found), nil
}

func missingFrom(requested, found []string) []string {
	known := make(map[string]bool, len(found))
	for _, u := range found {
		known[u] = true
	}
	missing := make([]string, 0)
	for _, u := range requested {
		if !known[u] {
			missing = append(missing, u)
		}
	}
	return missing
}
