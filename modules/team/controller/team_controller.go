package controller

import (
	"court-reservation-api/core/errors"
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/team/dto"
	"court-reservation-api/modules/team/validator"

	"github.com/labstack/echo/v4"
)

func (controller *TeamController) PrivateCreateTeam(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	requestData := new(dto.TeamRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateTeamRequest(requestData, controller.maxMembers)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	team, errCreate := controller.TeamService.CreateTeam(ctx, claims.Username, requestData)
	if errCreate != nil {
		return controller.ErrorResponse(c, errCreate)
	}

	return controller.SuccessResponse(c, team, "create team success")
}

func (controller *TeamController) PrivateGetTeams(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	teams, err := controller.TeamService.LookupTeamsByUsername(ctx, claims.Username)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, teams, "get teams success")
}

func (controller *TeamController) PrivateGetTeamByID(c echo.Context) error {
	ctx := c.Request().Context()

	team, errGet := controller.TeamService.LookupTeamByID(ctx, c.Param("id"))
	if errGet != nil {
		return controller.ErrorResponse(c, errGet)
	}

	return controller.SuccessResponse(c, team, "get team success")
}

func (controller *TeamController) PrivateUpdateTeam(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	requestData := new(dto.TeamRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateTeamRequest(requestData, controller.maxMembers)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	team, errUpdate := controller.TeamService.UpdateTeam(ctx, claims.Username, c.Param("id"), requestData)
	if errUpdate != nil {
		return controller.ErrorResponse(c, errUpdate)
	}

	return controller.SuccessResponse(c, team, "update team success")
}

func (controller *TeamController) PrivateValidateUsernames(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.ValidateUsernamesRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateUsernamesRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	result, err := controller.TeamService.ValidateUsernames(ctx, requestData.Usernames)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, result, "validate usernames success")
}
