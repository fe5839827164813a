package router

import (
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/team/controller"

	"github.com/labstack/echo/v4"
)

type TeamRouter struct {
	Controller *controller.TeamController
}

func NewTeamRouter(ctrl *controller.TeamController) *TeamRouter {
	return &TeamRouter{Controller: ctrl}
}

func (r *TeamRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	teams := privateRoutes.Group("/teams", mw.AuthMiddleware())
	teams.GET("", r.Controller.PrivateGetTeams)
	teams.POST("", r.Controller.PrivateCreateTeam)
	teams.POST("/validate-usernames", r.Controller.PrivateValidateUsernames)
	teams.GET("/:id", r.Controller.PrivateGetTeamByID)
	teams.PUT("/:id", r.Controller.PrivateUpdateTeam)
}
