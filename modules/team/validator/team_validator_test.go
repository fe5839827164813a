package validator

import (
	"testing"

	"court-reservation-api/modules/team/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateTeamRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.TeamRequest
		wantErr bool
	}{
		{name: "ok", req: dto.TeamRequest{Name: " Aces ", Members: []string{"ann", " bob"}}},
		{name: "missing name", req: dto.TeamRequest{Members: []string{"ann"}}, wantErr: true},
		{name: "no members", req: dto.TeamRequest{Name: "Aces"}, wantErr: true},
		{name: "too many members", req: dto.TeamRequest{Name: "Aces", Members: []string{"a", "b", "c", "d", "e"}}, wantErr: true},
		{name: "duplicate member", req: dto.TeamRequest{Name: "Aces", Members: []string{"ann", "ann"}}, wantErr: true},
		{name: "blank member", req: dto.TeamRequest{Name: "Aces", Members: []string{"ann", "  "}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			result := ValidateTeamRequest(&req, 4)
			assert.Equal(t, tt.wantErr, result.HasError(), "%+v", result.Errors)
		})
	}
}

func TestValidateTeamRequest_Trims(t *testing.T) {
	req := dto.TeamRequest{Name: "  Aces ", Members: []string{" ann ", "bob"}}
	assert.False(t, ValidateTeamRequest(&req, 4).HasError())
	assert.Equal(t, "Aces", req.Name)
	assert.Equal(t, []string{"ann", "bob"}, req.Members)
}
