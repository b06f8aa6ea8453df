package router

import (
	"family-calendar-api/core/middleware"
	"family-calendar-api/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{controller: controller}
}

func (r *EventRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/events", mw.AuthMiddleware())
	group.POST("", r.controller.CreateEvent)
	group.GET("/occurrences", r.controller.ListOccurrences)
	group.GET("/:id", r.controller.GetEvent)
	group.PUT("/:id/occurrence", r.controller.UpdateOccurrence)
	group.DELETE("/:id/occurrence", r.controller.DeleteOccurrence)
	group.POST("/:id/attachment", r.controller.AttachFile)
}
