package controller

import (
	"court-reservation-api/core/errors"
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/reservation/dto"

	"github.com/labstack/echo/v4"
)

func (controller *ReservationController) PrivateReserve(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	requestData := new(dto.ReserveRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	outcome, errReserve := controller.ReservationService.Reserve(ctx, claims.Username, requestData)
	if errReserve != nil {
		return controller.ErrorResponse(c, errReserve)
	}

	return controller.SuccessResponse(c, outcome, "reservation "+outcome.Status)
}

func (controller *ReservationController) PrivateCancel(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	requestData := new(dto.CancelRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	result, errCancel := controller.ReservationService.Cancel(ctx, claims.Username, requestData)
	if errCancel != nil {
		return controller.ErrorResponse(c, errCancel)
	}

	return controller.SuccessResponse(c, result, "cancel reservation success")
}

func (controller *ReservationController) PublicGetSlot(c echo.Context) error {
	ctx := c.Request().Context()

	slot, err := controller.ReservationService.GetSlot(ctx, c.QueryParam("date"), c.QueryParam("time_slot"))
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, slot, "get slot success")
}

func (controller *ReservationController) PublicGetDateAvailability(c echo.Context) error {
	ctx := c.Request().Context()

	availability, err := controller.ReservationService.GetDateAvailability(ctx, c.Param("date"))
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, availability, "get availability success")
}

func (controller *ReservationController) PublicGetTimeSlots(c echo.Context) error {
	return controller.SuccessResponse(c, controller.ReservationService.TimeSlots(), "get time slots success")
}
