package router

import (
	"court-reservation-api/core/middleware"
	"court-reservation-api/modules/reservation/controller"

	"github.com/labstack/echo/v4"
)

type ReservationRouter struct {
	Controller *controller.ReservationController
}

func NewReservationRouter(ctrl *controller.ReservationController) *ReservationRouter {
	return &ReservationRouter{Controller: ctrl}
}

func (r *ReservationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public")
	publicRoutes.GET("/time-slots", r.Controller.PublicGetTimeSlots)
	publicRoutes.GET("/slots", r.Controller.PublicGetSlot)
	publicRoutes.GET("/slots/:date", r.Controller.PublicGetDateAvailability)

	privateRoutes := v1.Group("/private")
	reservations := privateRoutes.Group("/reservations", mw.AuthMiddleware())
	reservations.POST("", r.Controller.PrivateReserve, mw.RateLimit())
	reservations.PUT("/cancel", r.Controller.PrivateCancel)
}
