package record

import (
	"court-reservation-api/core/config"
	"court-reservation-api/core/middleware"
	"court-reservation-api/core/storage"
	"court-reservation-api/modules/record/controller"
	"court-reservation-api/modules/record/router"
	"court-reservation-api/modules/record/service"

	"github.com/labstack/echo/v4"
)

// NewService wires the projector. uploader is nil when archiving is off.
func NewService(cfg *config.Config, teams service.TeamLister, slots service.SlotReader, uploader storage.ObjectUploader) *service.RecordService {
	return service.NewRecordService(teams, slots, uploader, cfg.Archive.Prefix, cfg.Archive.Admins)
}

func Init(e *echo.Echo, svc service.RecordServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewRecordController(svc)
	router.NewRecordRouter(ctrl).Setup(e, mw)
}
