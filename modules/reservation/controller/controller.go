package controller

import (
	"court-reservation-api/core/controller"
	"court-reservation-api/modules/reservation/service"
)

type ReservationController struct {
	controller.BaseController
	ReservationService service.ReservationServiceInterface
}

func NewReservationController(svc service.ReservationServiceInterface) *ReservationController {
	return &ReservationController{
		BaseController:     controller.NewBaseController(),
		ReservationService: svc,
	}
}
