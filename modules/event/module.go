package event

import (
	"family-calendar-api/core/cache"
	"family-calendar-api/core/database"
	"family-calendar-api/core/middleware"
	"family-calendar-api/core/storage"
	"family-calendar-api/core/tasks"
	"family-calendar-api/modules/event/controller"
	"family-calendar-api/modules/event/repository"
	"family-calendar-api/modules/event/router"
	"family-calendar-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, c cache.Cache, t tasks.Client, uploader storage.Uploader, mw *middleware.Middleware) {
	store := repository.NewStore(db)
	eventService := service.NewEventService(store, c, t, uploader)
	mutationService := service.NewMutationService(store, c, t)
	eventController := controller.NewEventController(eventService, mutationService)

	router.NewEventRouter(eventController).Register(e, mw)
}
