package controller

import (
	"court-reservation-api/core/controller"
	"court-reservation-api/modules/record/service"
)

type RecordController struct {
	controller.BaseController
	RecordService service.RecordServiceInterface
}

func NewRecordController(svc service.RecordServiceInterface) *RecordController {
	return &RecordController{
		BaseController: controller.NewBaseController(),
		RecordService:  svc,
	}
}
