package family

import (
	"family-calendar-api/core/database"
	"family-calendar-api/core/middleware"
	"family-calendar-api/modules/family/controller"
	"family-calendar-api/modules/family/repository"
	"family-calendar-api/modules/family/router"
	"family-calendar-api/modules/family/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware) {
	repo := repository.NewFamilyRepository(db)
	svc := service.NewFamilyService(repo)
	ctrl := controller.NewFamilyController(svc)

	router.NewFamilyRouter(ctrl).Register(e, mw)
}
