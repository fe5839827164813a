package team

import (
	"court-reservation-api/core/cache"
	"court-reservation-api/core/config"
	"court-reservation-api/core/database"
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/team/controller"
	"court-reservation-api/modules/team/repository"
	"court-reservation-api/modules/team/router"
	"court-reservation-api/modules/team/service"

	"github.com/labstack/echo/v4"
)

// NewService picks the postgres directory when a database is configured and
// the in-memory one otherwise. db and c may be nil.
func NewService(cfg *config.Config, db database.IDatabase, c cache.Cache) *service.TeamService {
	var repo repository.TeamRepositoryInterface
	if db != nil {
		repo = repository.NewTeamRepository(db)
	} else {
		repo = repository.NewMemoryTeamRepository(cfg.Team.SeedUsers)
	}
	return service.NewTeamService(repo, c, cfg.Team.CacheTTL)
}

func Init(e *echo.Echo, cfg *config.Config, svc service.TeamServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewTeamController(svc, cfg.Team.MaxMembers)
	router.NewTeamRouter(ctrl).Setup(e, mw)
}
