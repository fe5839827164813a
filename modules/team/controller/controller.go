package controller

import (
	"court-reservation-api/core/controller"
	"court-reservation-api/modules/team/service"
)

type TeamController struct {
	controller.BaseController
	TeamService service.TeamServiceInterface
	maxMembers  int
}

func NewTeamController(svc service.TeamServiceInterface, maxMembers int) *TeamController {
	return &TeamController{
		BaseController: controller.NewBaseController(),
		TeamService:    svc,
		maxMembers:     maxMembers,
	}
}
