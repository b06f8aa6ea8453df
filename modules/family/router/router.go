package router

import (
	"family-calendar-api/core/middleware"
	"family-calendar-api/modules/family/controller"

	"github.com/labstack/echo/v4"
)

type FamilyRouter struct {
	controller *controller.FamilyController
}

func NewFamilyRouter(controller *controller.FamilyController) *FamilyRouter {
	return &FamilyRouter{controller: controller}
}

func (r *FamilyRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/families", mw.AuthMiddleware())
	group.POST("", r.controller.CreateFamily)
	group.POST("/join", r.controller.JoinFamily)
	group.GET("/me", r.controller.GetMyFamily)
	group.GET("/members", r.controller.ListMembers)
}
