package dto

import "time"

type TeamRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	MemberCount int       `json:"member_count"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *TeamResponse) HasMember(username string) bool {
	for _, m := range t.Members {
		if m == username {
			return true
		}
	}
	return false
}

type ValidateUsernamesRequest struct {
	Usernames []string `json:"usernames"`
}

type ValidateUsernamesResponse struct {
	MissingUsernames []string `json:"missing_usernames"`
}
