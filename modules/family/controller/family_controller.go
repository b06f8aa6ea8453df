package controller

import (
	"family-calendar-api/core/constants"
	"family-calendar-api/core/controller"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/utils"
	"family-calendar-api/modules/family/dto"
	"family-calendar-api/modules/family/service"

	"github.com/labstack/echo/v4"
)

type FamilyController struct {
	service service.FamilyServiceInterface
	controller.BaseController
}

func NewFamilyController(svc service.FamilyServiceInterface) *FamilyController {
	return &FamilyController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// CreateFamily creates a family owned by the current user
// @Summary Create family
// @Tags Family
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateFamilyRequest true "Family payload"
// @Success 200 {object} dto.FamilyResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/families [post]
func (c *FamilyController) CreateFamily(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.CreateFamilyRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.CreateFamily(ctx.Request().Context(), claims.UserID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Family created successfully")
}

// JoinFamily joins a family by code
// @Summary Join family
// @Tags Family
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.JoinFamilyRequest true "Join code"
// @Success 200 {object} dto.FamilyResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/families/join [post]
func (c *FamilyController) JoinFamily(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.JoinFamilyRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.JoinFamily(ctx.Request().Context(), claims.UserID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Joined family successfully")
}

// GetMyFamily returns the current user's family
// @Summary Get my family
// @Tags Family
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.FamilyResponse
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/families/me [get]
func (c *FamilyController) GetMyFamily(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.GetFamily(ctx.Request().Context(), claims.FamilyID, claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Family retrieved successfully")
}

// ListMembers returns the members of the current user's family
// @Summary List family members
// @Tags Family
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.MemberResponse
// @Failure 401 {object} errors.AppError
// @Router /private/families/members [get]
func (c *FamilyController) ListMembers(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.ListMembers(ctx.Request().Context(), claims.FamilyID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Members retrieved successfully")
}

// Helper function to get token claims from the request context
func claimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "No token data in context", nil)
	}
	return claims, nil
}
