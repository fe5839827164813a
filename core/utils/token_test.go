package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("alice", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateAndParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = ValidateAndParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAndParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("alice", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAndParseToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTeamID(t *testing.T) {
	a, b := GenerateTeamID(), GenerateTeamID()
	assert.Len(t, a, teamIDLength)
	assert.NotEqual(t, a, b)
}
