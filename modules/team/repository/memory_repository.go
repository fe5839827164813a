package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"court-reservation-api/modules/team/entity"
)

// MemoryTeamRepository backs the directory when no database is configured.
// Known usernames come from configuration.
type MemoryTeamRepository struct {
	mu    sync.RWMutex
	teams map[string]*entity.Team
	users map[string]bool
}

func NewMemoryTeamRepository(usernames []string) *MemoryTeamRepository {
	users := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		users[u] = true
	}
	return &MemoryTeamRepository{
		teams: make(map[string]*entity.Team),
		users: users,
	}
}

func (r *MemoryTeamRepository) AddUser(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = true
}

func cloneTeam(t *entity.Team) *entity.Team {
	c := *t
	c.Members = append([]string(nil), t.Members...)
	return &c
}

func (r *MemoryTeamRepository) CreateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[team.ID]; exists {
		return nil, fmt.Errorf("team with id %s already exists", team.ID)
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	r.teams[team.ID] = cloneTeam(team)
	return team, nil
}

func (r *MemoryTeamRepository) UpdateTeam(ctx context.Context, team *entity.Team) (*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.teams[team.ID]
	if !ok {
		return nil, fmt.Errorf("team with id %s not found", team.ID)
	}
	team.CreatedAt = existing.CreatedAt
	team.UpdatedAt = time.Now().UTC()
	r.teams[team.ID] = cloneTeam(team)
	return team, nil
}

func (r *MemoryTeamRepository) GetTeamByID(ctx context.Context, id string) (*entity.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, nil
	}
	return cloneTeam(t), nil
}

func (r *MemoryTeamRepository) GetTeamsByMember(ctx context.Context, username string) ([]*entity.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Team, 0)
	for _, t := range r.teams {
		if t.HasMember(username) {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryTeamRepository) FindMissingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if r.users[u] {
			found = append(found, u)
		}
	}
	return missingFrom(usernames, found), nil
}
