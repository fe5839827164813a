package validator

import (
	"strings"

	"court-reservation-api/modules/team/dto"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (v *ValidationResult) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

func (v *ValidationResult) HasError() bool {
	return len(v.Errors) > 0
}

const maxTeamNameLength = 128

// ValidateTeamRequest trims the request in place and checks its shape. Whether
// the usernames exist is checked by the service.
func ValidateTeamRequest(req *dto.TeamRequest, maxMembers int) *ValidationResult {
	result := &ValidationResult{}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		result.Add("name", "name is required")
	} else if len(req.Name) > maxTeamNameLength {
		result.Add("name", "name is too long")
	}

	members := make([]string, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, strings.TrimSpace(m))
	}
	req.Members = members

	switch {
	case len(members) == 0:
		result.Add("members", "at least one member is required")
	case len(members) > maxMembers:
		result.Add("members", "too many members")
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			result.Add("members", "member username must not be empty")
			continue
		}
		if seen[m] {
			result.Add("members", "duplicate member "+m)
		}
		seen[m] = true
	}

	return result
}

func ValidateUsernamesRequest(req *dto.ValidateUsernamesRequest) *ValidationResult {
	result := &ValidationResult{}
	if len(req.Usernames) == 0 {
		result.Add("usernames", "usernames are required")
	}
	for i, u := range req.Usernames {
		req.Usernames[i] = strings.TrimSpace(u)
		if req.Usernames[i] == "" {
			result.Add("usernames", "username must not be empty")
		}
	}
	return result
}
