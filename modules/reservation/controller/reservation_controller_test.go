package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"court-reservation-api/core/config"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/metrics"
	"court-reservation-api/core/middleware"
	"court-reservation-api/core/utils"
	"court-reservation-api/modules/reservation"
	"court-reservation-api/modules/reservation/repository"
	"court-reservation-api/modules/reservation/service"
	teamdto "court-reservation-api/modules/team/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "controller-test-secret"

type staticTeams map[string]*teamdto.TeamResponse

func (s staticTeams) LookupTeamByID(ctx context.Context, id string) (*teamdto.TeamResponse, *errors.AppError) {
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "team not found", nil)
}

type envelope struct {
	Status  any             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{
		Reservation: config.ReservationConfig{
			Store:          "memory",
			VenuesPerSlot:  1,
			TimeSlots:      []string{"18:00", "19:00"},
			MaxPreferences: 3,
			RetryAttempts:  1,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
	m := metrics.New()
	backend, err := reservation.NewSlotBackend(context.Background(), cfg, reservation.Stores{})
	require.NoError(t, err)
	store := repository.NewSlotRepository(backend, cfg.Reservation, m)
	teams := staticTeams{
		"A": {ID: "A", Name: "Aces", Members: []string{"ann"}},
		"B": {ID: "B", Name: "Blockers", Members: []string{"bob"}},
	}
	svc := reservation.NewService(cfg, store, repository.NewMemoryLocker(), teams, service.NoopScheduler{}, m)

	e := echo.New()
	reservation.Init(e, svc, middleware.NewMiddleware(secret, m, cfg.RateLimit))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, user, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		token, err := utils.GenerateToken(user, secret, time.Minute)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestReservationEndpoints(t *testing.T) {
	e := newServer(t)

	rec, env := do(t, e, http.MethodPost, "/api/v1/private/reservations", "ann",
		`{"team_id":"A","date":"2024-05-01","preferences":["18:00"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"status":"assigned"`)
	assert.Contains(t, string(env.Data), `"venue":1`)

	rec, env = do(t, e, http.MethodPost, "/api/v1/private/reservations", "bob",
		`{"team_id":"B","date":"2024-05-01","preferences":["18:00"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"status":"waitlisted"`)

	rec, env = do(t, e, http.MethodPost, "/api/v1/private/reservations", "ann",
		`{"team_id":"A","date":"2024-05-01","preferences":["19:00"]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_BOOKING", env.Code)

	rec, env = do(t, e, http.MethodGet, "/api/v1/public/slots?date=2024-05-01&time_slot=18:00", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"assignments":{"A":1}`)
	assert.Contains(t, string(env.Data), `"waitlist":["B"]`)

	rec, env = do(t, e, http.MethodPut, "/api/v1/private/reservations/cancel", "ann",
		`{"team_id":"A","date":"2024-05-01","time_slot":"18:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"promoted":{"team_id":"B","venue":1}`)

	rec, env = do(t, e, http.MethodPut, "/api/v1/private/reservations/cancel", "ann",
		`{"team_id":"A","date":"2024-05-01","time_slot":"18:00"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_REGISTERED", env.Code)

	rec, env = do(t, e, http.MethodGet, "/api/v1/public/slots/2024-05-01", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `{"time_slot":"18:00","total_venues":1,"free_venues":0,"waitlist_length":0}`)
}

func TestReservationEndpoints_Errors(t *testing.T) {
	e := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		status int
		code   string
	}{
		{name: "no token", method: http.MethodPost, path: "/api/v1/private/reservations", body: `{}`, status: http.StatusUnauthorized, code: "MISSING_AUTHORIZATION_HEADER"},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/private/reservations", user: "ann", body: `{"preferences":`, status: http.StatusBadRequest, code: "INVALID_REQUEST_DATA"},
		{name: "empty preferences", method: http.MethodPost, path: "/api/v1/private/reservations", user: "ann", body: `{"team_id":"A","date":"2024-05-01","preferences":[]}`, status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "foreign team", method: http.MethodPost, path: "/api/v1/private/reservations", user: "bob", body: `{"team_id":"A","date":"2024-05-01","preferences":["18:00"]}`, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "unknown team", method: http.MethodPut, path: "/api/v1/private/reservations/cancel", user: "ann", body: `{"team_id":"Q","date":"2024-05-01","time_slot":"18:00"}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad slot query", method: http.MethodGet, path: "/api/v1/public/slots?date=2024-05-01&time_slot=04:00", status: http.StatusBadRequest, code: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestTimeSlotsEndpoint(t *testing.T) {
	e := newServer(t)

	rec, env := do(t, e, http.MethodGet, "/api/v1/public/time-slots", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"time_slots":["18:00","19:00"],"venues_per_slot":1,"max_preferences":3}`, string(env.Data))
}
