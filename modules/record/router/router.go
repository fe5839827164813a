package router

import (
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/record/controller"

	"github.com/labstack/echo/v4"
)

type RecordRouter struct {
	Controller *controller.RecordController
}

func NewRecordRouter(ctrl *controller.RecordController) *RecordRouter {
	return &RecordRouter{Controller: ctrl}
}

func (r *RecordRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	records := privateRoutes.Group("/records", mw.AuthMiddleware())
	records.GET("", r.Controller.PrivateGetRecords)
	records.POST("/archive", r.Controller.PrivateArchiveDate)
}
