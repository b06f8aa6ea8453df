package controller

import (
	"time"

	"family-calendar-api/core/constants"
	"family-calendar-api/core/controller"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/utils"
	"family-calendar-api/modules/event/dto"
	"family-calendar-api/modules/event/entity"
	"family-calendar-api/modules/event/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EventController struct {
	service   service.EventServiceInterface
	mutations service.MutationServiceInterface
	controller.BaseController
}

func NewEventController(svc service.EventServiceInterface, mutations service.MutationServiceInterface) *EventController {
	return &EventController{
		service:        svc,
		mutations:      mutations,
		BaseController: controller.NewBaseController(),
	}
}

// CreateEvent creates a new event or recurring series
// @Summary Create event
// @Description Creates a one-off event or a recurring series for the family
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event payload"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/events [post]
func (c *EventController) CreateEvent(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.CreateEventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.CreateEvent(ctx.Request().Context(), claims.FamilyID, claims.UserID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Event created successfully")
}

// GetEvent returns a single base event
// @Summary Get event
// @Description Returns one event by ID
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{id} [get]
func (c *EventController) GetEvent(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.service.GetEventByID(ctx.Request().Context(), claims.FamilyID, eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Event retrieved successfully")
}

// ListOccurrences returns the expanded occurrence list for a date range
// @Summary List occurrences
// @Description Expands all family events over the range with exceptions applied
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD or RFC3339)"
// @Param to query string true "Range end (YYYY-MM-DD or RFC3339)"
// @Success 200 {array} dto.OccurrenceResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/events/occurrences [get]
func (c *EventController) ListOccurrences(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	from, err := parseDateParam(ctx.QueryParam("from"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid from date")
	}
	to, err := parseDateParam(ctx.QueryParam("to"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid to date")
	}

	result, appErr := c.service.ListOccurrences(ctx.Request().Context(), claims.FamilyID, from, to)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Occurrences retrieved successfully")
}

// UpdateOccurrence applies a scoped edit to a series
// @Summary Update occurrence
// @Description Edits one occurrence, the tail of the series, or the whole series
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.UpdateOccurrenceRequest true "Scoped update payload"
// @Success 200 {object} dto.MutationResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/events/{id}/occurrence [put]
func (c *EventController) UpdateOccurrence(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	req := new(dto.UpdateOccurrenceRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.mutations.UpdateOccurrence(ctx.Request().Context(), claims.FamilyID, eventID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Occurrence updated successfully")
}

// DeleteOccurrence applies a scoped delete to a series
// @Summary Delete occurrence
// @Description Deletes one occurrence, the tail of the series, or the whole series
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Param occurrence_date query string true "Occurrence date (YYYY-MM-DD)"
// @Param scope query string true "Edit scope: this, this_and_following, all"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/events/{id}/occurrence [delete]
func (c *EventController) DeleteOccurrence(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	occurrenceDate, err := parseDateParam(ctx.QueryParam("occurrence_date"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid occurrence date")
	}

	scope := entity.EditScope(ctx.QueryParam("scope"))

	if appErr := c.mutations.DeleteOccurrence(ctx.Request().Context(), claims.FamilyID, eventID, occurrenceDate, scope); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Occurrence deleted successfully")
}

// AttachFile uploads an attachment for an event
// @Summary Attach file
// @Description Uploads a file and links it to the event
// @Tags Event
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Event ID"
// @Param file formData file true "Attachment"
// @Success 200 {object} dto.AttachmentResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{id}/attachment [post]
func (c *EventController) AttachFile(ctx echo.Context) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Failed to read file")
	}
	defer file.Close()

	result, appErr := c.service.AttachFile(ctx.Request().Context(), claims.FamilyID, eventID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Attachment uploaded successfully")
}

// Helper function to get token claims from the request context
func claimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "No token data in context", nil)
	}
	return claims, nil
}

// parseDateParam accepts plain dates and full timestamps.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(constants.DateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
