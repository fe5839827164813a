package controller

import (
	"court-reservation-api/core/errors"
	"court-reservation-api/core/middleware"
	"court-reservation-api/core/params"

	"github.com/labstack/echo/v4"
)

func (controller *RecordController) PrivateGetRecords(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	records, err := controller.RecordService.ListRecords(ctx, claims.Username, *params.NewQueryParams(c))
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, records, "get records success")
}

func (controller *RecordController) PrivateArchiveDate(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	date := c.QueryParam("date")
	if date == "" {
		return controller.BadRequest(errors.ErrInvalidInput, "date is required", nil)
	}

	result, err := controller.RecordService.ExportDate(ctx, claims.Username, date)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, result, "archive date success")
}
