package notification

import (
	"family-calendar-api/core/database"
	"family-calendar-api/core/middleware"
	"family-calendar-api/modules/notification/controller"
	"family-calendar-api/modules/notification/repository"
	"family-calendar-api/modules/notification/router"
	"family-calendar-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
